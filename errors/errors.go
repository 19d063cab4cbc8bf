// Package errors combines multiple errors into one value for reporting
// every validation failure at once.
package errors

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Errors is a slice of errors that acts like a single error
type Errors []error

// ErrIf appends a new error with failureMessage when condition is true.
// Returns the condition so callers can chain dependent checks.
func (e *Errors) ErrIf(condition bool, failureMessage string, formatArgs ...interface{}) bool {
	if condition {
		*e = append(*e, errors.Errorf(failureMessage, formatArgs...))
	}
	return condition
}

// AddErr appends err if it is not nil, flattening nested Errors.
// Returns true if err was nil.
func (e *Errors) AddErr(err error) bool {
	if err != nil {
		if errs, ok := err.(Errors); ok {
			*e = append(*e, errs...)
		} else {
			*e = append(*e, err)
		}
	}
	return err == nil
}

// ErrOrNil returns nil when empty, the sole error when there's exactly one,
// and e itself otherwise
func (e Errors) ErrOrNil() error {
	if len(e) == 1 {
		return e[0]
	}
	if len(e) > 0 {
		return e
	}
	return nil
}

func (e Errors) Error() string {
	var buf strings.Builder
	for i, err := range e {
		if i != 0 {
			buf.WriteRune('\n')
		}
		buf.WriteString(err.Error())
	}
	return buf.String()
}

// Unwrap supports errors.Is and errors.As against every contained error
func (e Errors) Unwrap() []error {
	return e
}

// MarshalJSON renders each contained error as its own JSON object
func (e Errors) MarshalJSON() ([]byte, error) {
	var errs []interface{}
	for _, err := range e {
		switch err := err.(type) {
		case json.Marshaler:
			errs = append(errs, err)
		default:
			errs = append(errs, map[string]interface{}{"Description": err.Error()})
		}
	}
	return json.Marshal(errs)
}
