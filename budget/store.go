package budget

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pocketbook/category"
	sErrors "pocketbook/errors"
	"pocketbook/plaindb"
)

// Store manages budget targets
type Store struct {
	mu         sync.Mutex
	bucket     plaindb.Bucket
	categories *category.Store
}

// NewStore returns the budgets bucket
func NewStore(db plaindb.DB, categories *category.Store) (*Store, error) {
	bucket, err := db.Bucket("budgets", "1", &storeUpgrader{})
	if err != nil {
		return nil, err
	}
	return &Store{bucket: bucket, categories: categories}, nil
}

// Set stores a target amount for (owner, category, month, year). An existing
// target for the same period is replaced in place, keeping its ID.
func (s *Store) Set(owner, categoryID string, month time.Month, year int, amount decimal.Decimal) (Budget, error) {
	b := Budget{
		Owner:      owner,
		CategoryID: categoryID,
		Month:      month,
		Year:       year,
		Amount:     amount,
	}
	var errs sErrors.Errors
	errs.AddErr(b.Validate())
	if categoryID != "" {
		_, found, err := s.categories.Find(categoryID)
		if !errs.AddErr(err) {
			return Budget{}, errs.ErrOrNil()
		}
		if !found {
			errs.AddErr(errors.Wrapf(category.ErrNotFound, "id %q", categoryID))
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, found, err := s.findPeriodLocked(owner, categoryID, month, year)
	if err != nil {
		return Budget{}, err
	}
	if found {
		b.ID = existing.ID
		b.Created = existing.Created
	} else {
		b.ID = uuid.New().String()
		b.Created = time.Now().UTC()
	}
	return b, s.bucket.Put(b.ID, b)
}

func (s *Store) findPeriodLocked(owner, categoryID string, month time.Month, year int) (Budget, bool, error) {
	var b, match Budget
	found := false
	err := s.bucket.Iter(&b, func(string) bool {
		if b.samePeriod(owner, categoryID, month, year) {
			match = b
			found = true
			return false
		}
		return true
	})
	return match, found, err
}

// Remove deletes the budget with this ID. Removing an unknown ID is a no-op.
func (s *Store) Remove(id string) error {
	return s.bucket.Delete(id)
}

// RemoveForOwner deletes every budget belonging to 'owner'
func (s *Store) RemoveForOwner(owner string) error {
	var b Budget
	var ids []string
	err := s.bucket.Iter(&b, func(id string) bool {
		if b.Owner == owner {
			ids = append(ids, id)
		}
		return true
	})
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.bucket.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// ListForOwner returns the owner's budgets, unordered
func (s *Store) ListForOwner(owner string) ([]Budget, error) {
	var b Budget
	var budgets []Budget
	err := s.bucket.Iter(&b, func(string) bool {
		if b.Owner == owner {
			budgets = append(budgets, b)
		}
		return true
	})
	return budgets, err
}
