package budget

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pocketbook/category"
	"pocketbook/ledger"
	"pocketbook/report"
)

// Row joins one budget target with the actual sums for its period.
// Spent and Received are both reported regardless of the category's kind,
// so variance is visible in either direction.
type Row struct {
	Category string
	Kind     category.Kind
	Month    time.Month
	Year     int
	Target   decimal.Decimal
	Spent    decimal.Decimal
	Received decimal.Decimal
}

// Reconcile produces one row per budget owned by 'owner', joined against
// the given transactions. Rows are ordered newest period first: year
// descending, month descending, then category kind and name ascending.
func (s *Store) Reconcile(owner string, txns ledger.Transactions) ([]Row, error) {
	budgets, err := s.ListForOwner(owner)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(budgets))
	for _, b := range budgets {
		cat, found, err := s.categories.Find(b.CategoryID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.Wrapf(category.ErrNotFound, "budget %q references id %q", b.ID, b.CategoryID)
		}
		rows = append(rows, Row{
			Category: cat.Name,
			Kind:     cat.Kind,
			Month:    b.Month,
			Year:     b.Year,
			Target:   b.Amount,
			Spent:    report.PeriodSum(txns, b.CategoryID, category.Expense, b.Month, b.Year),
			Received: report.PeriodSum(txns, b.CategoryID, category.Income, b.Month, b.Year),
		})
	}

	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Year != rows[b].Year {
			return rows[a].Year > rows[b].Year
		}
		if rows[a].Month != rows[b].Month {
			return rows[a].Month > rows[b].Month
		}
		if rows[a].Kind != rows[b].Kind {
			return rows[a].Kind < rows[b].Kind
		}
		return strings.ToLower(rows[a].Category) < strings.ToLower(rows[b].Category)
	})
	return rows, nil
}
