// Package report computes aggregates over transaction sets. Every function
// here is pure: no store access, no side effects.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"pocketbook/category"
	"pocketbook/ledger"
)

// Summary holds the running totals for a transaction set
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// Totals sums the set's income and expenses. An empty set yields all zeros.
func Totals(txns ledger.Transactions) Summary {
	var income, expenses decimal.Decimal
	for _, txn := range txns {
		switch txn.Kind {
		case category.Income:
			income = income.Add(txn.Amount)
		case category.Expense:
			expenses = expenses.Add(txn.Amount)
		}
	}
	return Summary{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// PeriodSum totals the transactions matching this category, kind, and
// calendar month. Matching compares parsed (year, month) integers, never
// formatted date strings. No matches sums to zero.
func PeriodSum(txns ledger.Transactions, categoryID string, kind category.Kind, month time.Month, year int) decimal.Decimal {
	var sum decimal.Decimal
	for _, txn := range txns {
		if txn.CategoryID != categoryID || txn.Kind != kind {
			continue
		}
		if txn.Date.Year() != year || txn.Date.Month() != month {
			continue
		}
		sum = sum.Add(txn.Amount)
	}
	return sum
}
