package alert

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/ledger"
	"pocketbook/user"
)

// Checker periodically reconciles every user's budgets and raises alerts
// for overspent expense periods.
type Checker struct {
	users   *user.Store
	txns    *ledger.Store
	budgets *budget.Store
	alerts  *Store
	logger  *zap.Logger

	checking atomic.Bool
	lastErr  atomic.Error
}

func NewChecker(users *user.Store, txns *ledger.Store, budgets *budget.Store, alerts *Store, logger *zap.Logger) *Checker {
	return &Checker{
		users:   users,
		txns:    txns,
		budgets: budgets,
		alerts:  alerts,
		logger:  logger,
	}
}

// LastErr returns the error from the most recent check run, if any.
func (c *Checker) LastErr() error {
	return c.lastErr.Load()
}

// RunOnce reconciles all users' budgets and raises overspend alerts.
// Concurrent runs are skipped rather than queued.
func (c *Checker) RunOnce() error {
	if !c.checking.CompareAndSwap(false, true) {
		c.logger.Debug("Budget check already running, skipping")
		return nil
	}
	defer c.checking.Store(false)

	err := c.checkAllUsers()
	c.lastErr.Store(err)
	return err
}

func (c *Checker) checkAllUsers() error {
	users, err := c.users.All()
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := c.checkUser(u.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkUser(ownerID string) error {
	txns, err := c.txns.ListForOwner(ownerID)
	if err != nil {
		return err
	}
	rows, err := c.budgets.Reconcile(ownerID, txns)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Kind != category.Expense || !row.Spent.GreaterThan(row.Target) {
			continue
		}
		message := fmt.Sprintf(
			"Overspent %q budget for %s %d: spent %s of %s",
			row.Category, row.Month, row.Year, row.Spent, row.Target,
		)
		unread, err := c.alerts.HasUnread(ownerID, message)
		if err != nil {
			return err
		}
		if unread {
			continue
		}
		if _, err := c.alerts.Add(ownerID, message); err != nil {
			return err
		}
		c.logger.Info("Raised overspend alert",
			zap.String("owner", ownerID),
			zap.String("category", row.Category),
			zap.String("spent", row.Spent.String()),
			zap.String("target", row.Target.String()),
		)
	}
	return nil
}

// Start runs a check immediately, then once per interval until 'done' closes.
func (c *Checker) Start(interval time.Duration, done <-chan struct{}) {
	if err := c.RunOnce(); err != nil {
		c.logger.Error("Budget check failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.RunOnce(); err != nil {
				c.logger.Error("Budget check failed", zap.Error(err))
			}
		}
	}
}
