package ledger

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pocketbook/category"
)

var dec = decimal.NewFromFloat

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestTransactionValidate(t *testing.T) {
	validTxn := Transaction{
		Owner:       "1",
		Amount:      dec(10),
		Kind:        category.Expense,
		Description: "Grocery Shopping",
		Date:        date(2025, time.May, 3),
	}

	for _, tc := range []struct {
		description string
		mutate      func(*Transaction)
		expectedErr error
	}{
		{
			description: "valid",
			mutate:      func(*Transaction) {},
		},
		{
			description: "zero amount",
			mutate:      func(txn *Transaction) { txn.Amount = dec(0) },
			expectedErr: ErrInvalidAmount,
		},
		{
			description: "negative amount",
			mutate:      func(txn *Transaction) { txn.Amount = dec(-5) },
			expectedErr: ErrInvalidAmount,
		},
		{
			description: "unknown kind",
			mutate:      func(txn *Transaction) { txn.Kind = "savings" },
			expectedErr: category.ErrUnknownKind,
		},
		{
			description: "zero date",
			mutate:      func(txn *Transaction) { txn.Date = time.Time{} },
			expectedErr: ErrInvalidDate,
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			txn := validTxn
			tc.mutate(&txn)
			err := txn.Validate()
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, stderrors.Is(err, tc.expectedErr), "expected %v, got %v", tc.expectedErr, err)
		})
	}

	t.Run("all failures reported at once", func(t *testing.T) {
		err := Transaction{}.Validate()
		assert.True(t, stderrors.Is(err, ErrInvalidAmount))
		assert.True(t, stderrors.Is(err, ErrInvalidDate))
		assert.True(t, stderrors.Is(err, category.ErrUnknownKind))
	})
}

func TestSortMostRecentFirst(t *testing.T) {
	txns := Transactions{
		{Description: "oldest", Date: date(2025, time.May, 1), Seq: 1},
		{Description: "newest", Date: date(2025, time.May, 11), Seq: 2},
		{Description: "middle", Date: date(2025, time.May, 5), Seq: 3},
	}
	txns.SortMostRecentFirst()
	assert.Equal(t, "newest", txns[0].Description)
	assert.Equal(t, "middle", txns[1].Description)
	assert.Equal(t, "oldest", txns[2].Description)
}

func TestSortMostRecentFirstTieBreak(t *testing.T) {
	sameDay := date(2025, time.May, 10)
	txns := Transactions{
		{Description: "first inserted", Date: sameDay, Seq: 1},
		{Description: "last inserted", Date: sameDay, Seq: 3},
		{Description: "second inserted", Date: sameDay, Seq: 2},
	}
	txns.SortMostRecentFirst()
	assert.Equal(t, "last inserted", txns[0].Description)
	assert.Equal(t, "second inserted", txns[1].Description)
	assert.Equal(t, "first inserted", txns[2].Description)
}
