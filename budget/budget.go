// Package budget tracks monthly spending targets per category and
// reconciles them against the ledger's actuals.
package budget

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	sErrors "pocketbook/errors"
)

// Validation errors surfaced by Set
var (
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
	ErrInvalidAmount = errors.New("budget target must not be negative")
)

// Budget is a target amount for one (owner, category, month, year).
// Re-setting the same period replaces the target, it never stacks.
type Budget struct {
	ID         string
	Owner      string
	CategoryID string
	Month      time.Month
	Year       int
	Amount     decimal.Decimal
	Created    time.Time
}

// Validate checks every field constraint at once
func (b Budget) Validate() error {
	var errs sErrors.Errors
	errs.ErrIf(b.Owner == "", "budget owner is required")
	errs.ErrIf(b.CategoryID == "", "budget category is required")
	errs.ErrIf(b.Year <= 0, "budget year is required")
	if b.Month < time.January || b.Month > time.December {
		errs.AddErr(errors.Wrapf(ErrInvalidMonth, "got %d", b.Month))
	}
	if b.Amount.IsNegative() {
		errs.AddErr(errors.Wrapf(ErrInvalidAmount, "got %s", b.Amount))
	}
	return errs.ErrOrNil()
}

func (b Budget) samePeriod(owner, categoryID string, month time.Month, year int) bool {
	return b.Owner == owner && b.CategoryID == categoryID && b.Month == month && b.Year == year
}
