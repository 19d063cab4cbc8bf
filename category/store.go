package category

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"pocketbook/plaindb"
)

// Store manages the category registry
type Store struct {
	mu     sync.Mutex
	bucket plaindb.Bucket
	lastID int64
}

// NewStore returns the categories bucket
func NewStore(db plaindb.DB) (*Store, error) {
	bucket, err := db.Bucket("categories", "1", &storeUpgrader{})
	if err != nil {
		return nil, err
	}
	s := &Store{bucket: bucket}
	// IDs are minted from a counter, resume after the highest one
	var c Category
	err = bucket.Iter(&c, func(id string) bool {
		if n, parseErr := strconv.ParseInt(id, 10, 64); parseErr == nil && n > s.lastID {
			s.lastID = n
		}
		return true
	})
	return s, err
}

// ResolveOrCreate returns the ID for the category with this (name, kind) pair,
// creating it first if it doesn't exist. Safe for concurrent use: two racing
// calls for the same unseen pair both receive the first-created ID.
func (s *Store) ResolveOrCreate(name string, kind Kind) (string, error) {
	name = strings.TrimSpace(name)
	c := Category{Name: name, Kind: kind}
	if err := c.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, found, err := s.findLocked(name, kind); err != nil || found {
		return existing.ID, err
	}
	s.lastID++
	c.ID = strconv.FormatInt(s.lastID, 10)
	return c.ID, s.bucket.Put(c.ID, c)
}

func (s *Store) findLocked(name string, kind Kind) (Category, bool, error) {
	var c, match Category
	found := false
	err := s.bucket.Iter(&c, func(string) bool {
		if c.matches(name, kind) {
			match = c
			found = true
			return false
		}
		return true
	})
	return match, found, err
}

// Find returns the category with the given ID
func (s *Store) Find(id string) (Category, bool, error) {
	var c Category
	found, err := s.bucket.Get(id, &c)
	return c, found, err
}

// ListByKind returns all categories of the given kind in insertion order
func (s *Store) ListByKind(kind Kind) ([]Category, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	var c Category
	var matches []Category
	err := s.bucket.Iter(&c, func(string) bool {
		if c.Kind == kind {
			matches = append(matches, c)
		}
		return true
	})
	sortByInsertion(matches)
	return matches, err
}

// All returns every category in insertion order
func (s *Store) All() ([]Category, error) {
	var c Category
	var all []Category
	err := s.bucket.Iter(&c, func(string) bool {
		all = append(all, c)
		return true
	})
	sortByInsertion(all)
	return all, err
}

// ByName returns every category sharing this name, any kind. Reporting
// convenience only: name alone is ambiguous, never treat it as identity.
func (s *Store) ByName(name string) ([]Category, error) {
	var c Category
	var matches []Category
	err := s.bucket.Iter(&c, func(string) bool {
		if strings.EqualFold(c.Name, name) {
			matches = append(matches, c)
		}
		return true
	})
	sortByInsertion(matches)
	return matches, err
}

// Len returns the number of registered categories
func (s *Store) Len() int {
	return s.bucket.Len()
}

func sortByInsertion(categories []Category) {
	sort.Slice(categories, func(a, b int) bool {
		idA, errA := strconv.ParseInt(categories[a].ID, 10, 64)
		idB, errB := strconv.ParseInt(categories[b].ID, 10, 64)
		if errA != nil || errB != nil {
			return categories[a].ID < categories[b].ID
		}
		return idA < idB
	})
}
