// Package user manages accounts and credentials. It is the identity
// boundary: everything else in the system only sees the owner ID it yields.
package user

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	sErrors "pocketbook/errors"
	"pocketbook/redactor"
)

// Errors surfaced by registration and sign-in
var (
	ErrDuplicateUser = errors.New("username or email is already registered")
	ErrInvalidLogin  = errors.New("incorrect username or password")
)

// User is a registered account
type User struct {
	ID       string
	Name     string
	Email    string
	Password redactor.String
	Created  time.Time
}

// Validate checks every field constraint at once
func (u User) Validate() error {
	var errs sErrors.Errors
	errs.ErrIf(strings.TrimSpace(u.Name) == "", "username is required")
	if !errs.ErrIf(strings.TrimSpace(u.Email) == "", "email is required") {
		errs.ErrIf(!strings.Contains(u.Email, "@"), "email is malformed: %q", u.Email)
	}
	errs.ErrIf(u.Password == "", "password is required")
	return errs.ErrOrNil()
}
