package alert

import (
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when an alert ID does not exist.
var ErrNotFound = errors.New("alert not found")

// Alert is a notification for a single user, typically raised when a
// budget period goes over its target.
type Alert struct {
	ID      string
	Owner   string
	Message string
	Read    bool
	Created time.Time
	Seq     int64
}

func (a Alert) Validate() error {
	if a.Message == "" {
		return errors.New("alert message is required")
	}
	return nil
}
