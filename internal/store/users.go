package store

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/qnachat/qnachat/internal/storage"
)

const usersKey = "users"

// UserStore persists the full user collection as one JSON document under a
// single key. Every mutation reads the collection, changes it in memory,
// and writes it back whole. The mutex serializes read-modify-write cycles
// within this process; concurrent processes are not coordinated.
type UserStore struct {
	kv storage.Store
	mu sync.Mutex
}

func NewUserStore(kv storage.Store) *UserStore {
	return &UserStore{kv: kv}
}

// load reads the stored user collection. A value that does not decode as a
// user array is corrupt: it is logged, discarded, and treated as empty so
// the store stays available.
func (s *UserStore) load() []User {
	data, ok, err := s.kv.Get(usersKey)
	if err != nil {
		log.Printf("Error reading users collection: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		log.Printf("Discarding corrupt users collection: %v", err)
		if err := s.kv.Delete(usersKey); err != nil {
			log.Printf("Error clearing corrupt users collection: %v", err)
		}
		return nil
	}
	return users
}

func (s *UserStore) save(users []User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	if err := s.kv.Set(usersKey, data); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// Create appends the user to the collection. The email must not already be
// registered; on conflict ErrDuplicateUser is returned and the collection
// is left untouched.
func (s *UserStore) Create(user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	for _, u := range users {
		if u.Email == user.Email {
			return User{}, ErrDuplicateUser
		}
	}

	users = append(users, user)
	if err := s.save(users); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *UserStore) GetByEmail(email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.load() {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *UserStore) GetByID(id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.load() {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

// List returns all registered users in insertion order.
func (s *UserStore) List() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}
