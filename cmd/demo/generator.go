package main

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"

	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/ledger"
)

// generator deterministically produces sample finances: the same user name
// always yields the same ledger.
type generator struct {
	rand *rand.Rand
}

func newGenerator(seed string) *generator {
	return &generator{
		rand: rand.New(rand.NewSource(seedStringToInt(seed))),
	}
}

func seedStringToInt(seed string) uint64 {
	buf := bytes.NewBufferString(seed)
	var reducedVal uint64
	for val, err := binary.ReadUvarint(buf); err == nil; val, err = binary.ReadUvarint(buf) {
		reducedVal = (reducedVal ^ val) * val
	}
	return reducedVal
}

type expensePlan struct {
	category  string
	target    int64 // monthly budget target
	perMonth  int   // how many transactions each month
	maxAmount int64
	payees    []string
}

var expensePlans = []expensePlan{
	{"Rent", 1200, 1, 1200, []string{"Lakeside Flats"}},
	{"Food", 450, 8, 90, []string{"Corner Grocery", "Bagel Cart", "Taqueria"}},
	{"Transport", 150, 4, 60, []string{"Metro Card", "City Bikes"}},
	{"Fun", 200, 3, 80, []string{"Movie Palace", "Record Shop", "Climbing Gym"}},
}

func (g *generator) fill(ownerID string, months int, categories *category.Store, txns *ledger.Store, budgets *budget.Store) (seedSummary, error) {
	var summary seedSummary

	jobID, err := categories.ResolveOrCreate("Job", category.Income)
	if err != nil {
		return summary, err
	}

	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for monthsAgo := months - 1; monthsAgo >= 0; monthsAgo-- {
		monthStart := firstOfMonth.AddDate(0, -monthsAgo, 0)

		salary := decimal.NewFromInt(3000 + g.rand.Int63n(200))
		_, err := txns.Append(ledger.Transaction{
			Owner:       ownerID,
			Amount:      salary,
			Kind:        category.Income,
			CategoryID:  jobID,
			Description: "Paycheck",
			Date:        monthStart,
		})
		if err != nil {
			return summary, err
		}
		summary.transactions++
		summary.income = summary.income.Add(salary)

		for _, plan := range expensePlans {
			categoryID, err := categories.ResolveOrCreate(plan.category, category.Expense)
			if err != nil {
				return summary, err
			}
			_, err = budgets.Set(ownerID, categoryID, monthStart.Month(), monthStart.Year(), decimal.NewFromInt(plan.target))
			if err != nil {
				return summary, err
			}
			summary.budgets++

			for i := 0; i < plan.perMonth; i++ {
				amount := decimal.NewFromInt(1 + g.rand.Int63n(plan.maxAmount))
				txn := ledger.Transaction{
					Owner:       ownerID,
					Amount:      amount,
					Kind:        category.Expense,
					CategoryID:  categoryID,
					Description: plan.payees[g.rand.Intn(len(plan.payees))],
					Date:        monthStart.AddDate(0, 0, g.rand.Intn(28)),
				}
				if _, err := txns.Append(txn); err != nil {
					return summary, err
				}
				summary.transactions++
				summary.expenses = summary.expenses.Add(amount)
			}
		}
	}
	return summary, nil
}
