package alert

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"pocketbook/plaindb"
)

// Store persists alerts in a plaindb bucket.
type Store struct {
	mu      sync.Mutex
	bucket  plaindb.Bucket
	lastSeq int64
}

func NewStore(db plaindb.DB) (*Store, error) {
	bucket, err := db.Bucket("alerts", "1", &storeUpgrader{})
	if err != nil {
		return nil, err
	}
	s := &Store{bucket: bucket}
	var a Alert
	err = bucket.Iter(&a, func(string) bool {
		if a.Seq > s.lastSeq {
			s.lastSeq = a.Seq
		}
		return true
	})
	return s, err
}

// Add raises a new unread alert for the given owner.
func (s *Store) Add(owner, message string) (Alert, error) {
	a := Alert{
		Owner:   owner,
		Message: message,
	}
	if err := a.Validate(); err != nil {
		return Alert{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq++
	a.ID = uuid.New().String()
	a.Created = time.Now().UTC()
	a.Seq = s.lastSeq
	return a, s.bucket.Put(a.ID, a)
}

// ListForOwner returns the owner's alerts, newest first.
func (s *Store) ListForOwner(owner string) ([]Alert, error) {
	var a Alert
	var alerts []Alert
	err := s.bucket.Iter(&a, func(string) bool {
		if a.Owner == owner {
			alerts = append(alerts, a)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(alerts, func(a, b int) bool {
		return alerts[a].Seq > alerts[b].Seq
	})
	return alerts, nil
}

// MarkRead flags the alert as read. Returns ErrNotFound for unknown IDs.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var a Alert
	found, err := s.bucket.Get(id, &a)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(ErrNotFound, "id %q", id)
	}
	if a.Read {
		return nil
	}
	a.Read = true
	return s.bucket.Put(id, a)
}

// HasUnread reports whether the owner already has an unread alert with this
// exact message. Used to avoid re-raising the same alert on every check run.
func (s *Store) HasUnread(owner, message string) (bool, error) {
	var a Alert
	var has bool
	err := s.bucket.Iter(&a, func(string) bool {
		if a.Owner == owner && a.Message == message && !a.Read {
			has = true
			return false
		}
		return true
	})
	return has, err
}

// RemoveForOwner deletes every alert belonging to 'owner'.
// Used when the owner's account is removed.
func (s *Store) RemoveForOwner(owner string) error {
	var a Alert
	var ids []string
	err := s.bucket.Iter(&a, func(id string) bool {
		if a.Owner == owner {
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
