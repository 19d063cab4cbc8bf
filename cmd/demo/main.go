// Command demo fills a database directory with deterministic sample data:
// a demo user, a few months of salary and spending, and budgets to match.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pocketbook/alert"
	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/ledger"
	"pocketbook/plaindb"
	"pocketbook/user"
)

func main() {
	dbDirName := flag.String("data", "", "Required: Path to a database directory")
	userName := flag.String("user", "demo", "Name of the demo user to create")
	months := flag.Int("months", 6, "Number of months of history to generate")
	flag.Parse()
	if *dbDirName == "" {
		fmt.Fprintln(os.Stderr, "Missing required flag: -data")
		flag.Usage()
		os.Exit(2)
	}

	if err := seed(*dbDirName, *userName, *months); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seed(dbDirName, userName string, months int) error {
	db, err := plaindb.Open(dbDirName)
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := user.NewStore(db)
	if err != nil {
		return err
	}
	categories, err := category.NewStore(db)
	if err != nil {
		return err
	}
	txns, err := ledger.NewStore(db, categories)
	if err != nil {
		return err
	}
	budgets, err := budget.NewStore(db, categories)
	if err != nil {
		return err
	}

	u, err := users.Register(userName, userName+"@example.com", "demo")
	if err != nil {
		return err
	}

	gen := newGenerator(userName)
	summary, err := gen.fill(u.ID, months, categories, txns, budgets)
	if err != nil {
		return err
	}

	fmt.Printf("Created user %q with password \"demo\"\n", userName)
	fmt.Printf("Generated %d transactions and %d budgets over %d months\n",
		summary.transactions, summary.budgets, months)
	fmt.Printf("Income: %s  Expenses: %s  Balance: %s\n",
		summary.income, summary.expenses, summary.income.Sub(summary.expenses))

	rows, err := reconcileLatest(u.ID, txns, budgets)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Printf("  %s %d %-12s target %8s  spent %8s\n",
			row.Month, row.Year, row.Category, row.Target, row.Spent)
	}

	// raise any overspend alerts immediately so the dashboard has content
	alerts, err := alert.NewStore(db)
	if err != nil {
		return err
	}
	checker := alert.NewChecker(users, txns, budgets, alerts, zap.NewNop())
	return checker.RunOnce()
}

func reconcileLatest(ownerID string, txns *ledger.Store, budgets *budget.Store) ([]budget.Row, error) {
	list, err := txns.ListForOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return budgets.Reconcile(ownerID, list)
}

type seedSummary struct {
	transactions int
	budgets      int
	income       decimal.Decimal
	expenses     decimal.Decimal
}
