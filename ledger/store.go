package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"pocketbook/category"
	sErrors "pocketbook/errors"
	"pocketbook/plaindb"
)

// Store manages the ledger of transactions
type Store struct {
	mu         sync.Mutex
	bucket     plaindb.Bucket
	categories *category.Store
	lastSeq    int64
}

// NewStore returns the transactions bucket, validated against the category
// registry on every append
func NewStore(db plaindb.DB, categories *category.Store) (*Store, error) {
	bucket, err := db.Bucket("transactions", "1", &storeUpgrader{})
	if err != nil {
		return nil, err
	}
	s := &Store{bucket: bucket, categories: categories}
	var unsequenced Transactions
	var txn Transaction
	err = bucket.Iter(&txn, func(string) bool {
		if txn.Seq > s.lastSeq {
			s.lastSeq = txn.Seq
		}
		if txn.Seq == 0 {
			unsequenced = append(unsequenced, txn)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	// records upgraded from the legacy format have no insertion counter yet.
	// Assign them in date order so same-date ties stay stable across restarts.
	sort.Slice(unsequenced, func(a, b int) bool {
		if !unsequenced[a].Date.Equal(unsequenced[b].Date) {
			return unsequenced[a].Date.Before(unsequenced[b].Date)
		}
		return unsequenced[a].ID < unsequenced[b].ID
	})
	for i := range unsequenced {
		s.lastSeq++
		unsequenced[i].Seq = s.lastSeq
		if err := bucket.Put(unsequenced[i].ID, unsequenced[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append validates and stores a new transaction, returning it with its
// assigned ID. Nothing is persisted when validation fails.
func (s *Store) Append(txn Transaction) (Transaction, error) {
	var errs sErrors.Errors
	errs.AddErr(txn.Validate())
	if txn.CategoryID != "" {
		cat, found, err := s.categories.Find(txn.CategoryID)
		if !errs.AddErr(err) {
			return Transaction{}, errs.ErrOrNil()
		}
		if !found {
			errs.AddErr(errors.Wrapf(category.ErrNotFound, "id %q", txn.CategoryID))
		} else if cat.Kind != txn.Kind {
			errs.AddErr(errors.Wrapf(ErrKindMismatch, "%s transaction in %s category %q", txn.Kind, cat.Kind, cat.Name))
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq++
	txn.ID = uuid.New().String()
	txn.Created = time.Now().UTC()
	txn.Seq = s.lastSeq
	return txn, s.bucket.Put(txn.ID, txn)
}

// Find returns the transaction with this ID, if it exists
func (s *Store) Find(id string) (Transaction, bool, error) {
	var txn Transaction
	found, err := s.bucket.Get(id, &txn)
	return txn, found, err
}

// Remove deletes the transaction with this ID. Removing an unknown ID is a
// no-op, not an error.
func (s *Store) Remove(id string) error {
	return s.bucket.Delete(id)
}

// RemoveForOwner deletes every transaction belonging to 'owner'.
// Used when the owner's account is removed.
func (s *Store) RemoveForOwner(owner string) error {
	ids, err := s.idsForOwner(owner)
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

func (s *Store) idsForOwner(owner string) ([]string, error) {
	var txn Transaction
	var ids []string
	err := s.bucket.Iter(&txn, func(id string) bool {
		if txn.Owner == owner {
			ids = append(ids, id)
		}
		return true
	})
	return ids, err
}

// ListForOwner returns the owner's transactions in most-recent-first order
func (s *Store) ListForOwner(owner string) (Transactions, error) {
	var txn Transaction
	var txns Transactions
	err := s.bucket.Iter(&txn, func(string) bool {
		if txn.Owner == owner {
			txns = append(txns, txn)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	txns.SortMostRecentFirst()
	return txns, nil
}
