package user

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"pocketbook/plaindb"
	"pocketbook/redactor"
)

// Store manages registered users
type Store struct {
	mu     sync.Mutex
	bucket plaindb.Bucket
}

// NewStore returns the users bucket
func NewStore(db plaindb.DB) (*Store, error) {
	bucket, err := db.Bucket("users", "1", &storeUpgrader{})
	if err != nil {
		return nil, err
	}
	return &Store{bucket: bucket}, nil
}

// Register creates a new user. Usernames and emails are unique,
// case-insensitively.
func (s *Store) Register(name, email string, password redactor.String) (User, error) {
	u := User{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	taken, err := s.takenLocked(u.Name, u.Email)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, errors.Wrapf(ErrDuplicateUser, "%q / %q", u.Name, u.Email)
	}
	u.ID = uuid.New().String()
	u.Created = time.Now().UTC()
	return u, s.bucket.Put(u.ID, u)
}

func (s *Store) takenLocked(name, email string) (bool, error) {
	var u User
	taken := false
	err := s.bucket.Iter(&u, func(string) bool {
		if strings.EqualFold(u.Name, name) || strings.EqualFold(u.Email, email) {
			taken = true
			return false
		}
		return true
	})
	return taken, err
}

// Authenticate verifies the credentials and returns the matching user
func (s *Store) Authenticate(name string, password redactor.String) (User, error) {
	var u User
	found := false
	err := s.bucket.Iter(&u, func(string) bool {
		if strings.EqualFold(u.Name, strings.TrimSpace(name)) {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return User{}, err
	}
	if !found || u.Password != password {
		return User{}, ErrInvalidLogin
	}
	return u, nil
}

// Find returns the user with this ID
func (s *Store) Find(id string) (User, bool, error) {
	var u User
	found, err := s.bucket.Get(id, &u)
	return u, found, err
}

// All returns every registered user, unordered
func (s *Store) All() ([]User, error) {
	var u User
	var users []User
	err := s.bucket.Iter(&u, func(string) bool {
		users = append(users, u)
		return true
	})
	return users, err
}

// UpdateProfile changes the user's name and email, keeping both unique
func (s *Store) UpdateProfile(id, name, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, found, err := s.Find(id)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, errors.Errorf("no user with id %q", id)
	}

	updated := u
	updated.Name = strings.TrimSpace(name)
	updated.Email = strings.TrimSpace(email)
	if err := updated.Validate(); err != nil {
		return User{}, err
	}

	// another user may already hold the new name or email
	var other User
	taken := false
	err = s.bucket.Iter(&other, func(otherID string) bool {
		if otherID == id {
			return true
		}
		if strings.EqualFold(other.Name, updated.Name) || strings.EqualFold(other.Email, updated.Email) {
			taken = true
			return false
		}
		return true
	})
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, errors.Wrapf(ErrDuplicateUser, "%q / %q", updated.Name, updated.Email)
	}
	return updated, s.bucket.Put(id, updated)
}

// Remove deletes the user with this ID. Removing an unknown ID is a no-op.
// Callers are responsible for cascading to the user's owned records.
func (s *Store) Remove(id string) error {
	return s.bucket.Delete(id)
}
