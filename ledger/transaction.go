// Package ledger holds every owner's dated money movements and serves them
// back in most-recent-first display order.
package ledger

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pocketbook/category"
	sErrors "pocketbook/errors"
)

// Validation errors surfaced by Append
var (
	ErrInvalidAmount = errors.New("transaction amount must be greater than zero")
	ErrInvalidDate   = errors.New("transaction date is required")
	ErrKindMismatch  = errors.New("transaction kind does not match its category's kind")
)

// Transaction is a single money movement. Immutable once appended, except
// for deletion.
type Transaction struct {
	ID          string
	Owner       string
	Amount      decimal.Decimal
	Kind        category.Kind
	CategoryID  string `json:",omitempty"` // empty means uncategorized
	Description string
	Date        time.Time
	Created     time.Time

	// Seq records insertion order for the display-order tie-break
	Seq int64
}

// Validate checks every field constraint at once, so a caller sees all
// problems with a submission rather than the first
func (t Transaction) Validate() error {
	var errs sErrors.Errors
	errs.ErrIf(t.Owner == "", "transaction owner is required")
	if !t.Amount.IsPositive() {
		errs.AddErr(errors.Wrapf(ErrInvalidAmount, "got %s", t.Amount))
	}
	errs.AddErr(t.Kind.Validate())
	if t.Date.IsZero() {
		errs.AddErr(ErrInvalidDate)
	}
	return errs.ErrOrNil()
}

// Transactions is an ordered set of transactions
type Transactions []Transaction

// SortMostRecentFirst orders by date descending, breaking ties by insertion
// order descending. This is the dashboard's display order.
func (txns Transactions) SortMostRecentFirst() {
	sort.SliceStable(txns, func(a, b int) bool {
		if !txns[a].Date.Equal(txns[b].Date) {
			return txns[a].Date.After(txns[b].Date)
		}
		return txns[a].Seq > txns[b].Seq
	})
}
