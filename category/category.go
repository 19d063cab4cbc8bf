// Package category maintains the registry of transaction categories.
// A category's identity is always the (name, kind) pair: an income and an
// expense category may share a name without being the same category.
package category

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a category as money coming in or going out
type Kind string

// The only two valid kinds
const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Common registry errors
var (
	ErrUnknownKind = errors.New("kind must be income or expense")
	ErrNotFound    = errors.New("category does not exist")
)

// Validate returns an error unless k is a known kind
func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return errors.Wrapf(ErrUnknownKind, "%q", string(k))
}

// Category is a named income or expense classification
type Category struct {
	ID   string
	Name string
	Kind Kind
}

// Validate checks the category is well-formed
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("category name is required")
	}
	return c.Kind.Validate()
}

func (c Category) matches(name string, kind Kind) bool {
	return c.Kind == kind && strings.EqualFold(c.Name, name)
}
