package store

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/qnachat/qnachat/internal/storage"
)

const sessionKey = "session"

// SessionStore remembers at most one active user at a time: the public
// projection of the most recently authenticated user, persisted under a
// single key.
type SessionStore struct {
	kv storage.Store
}

func NewSessionStore(kv storage.Store) *SessionStore {
	return &SessionStore{kv: kv}
}

// Get returns the remembered session user, or nil when no session is
// active. A corrupt snapshot is logged, discarded, and reported as no
// session.
func (s *SessionStore) Get() (*User, error) {
	data, ok, err := s.kv.Get(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		log.Printf("Discarding corrupt session snapshot: %v", err)
		if err := s.kv.Delete(sessionKey); err != nil {
			log.Printf("Error clearing corrupt session snapshot: %v", err)
		}
		return nil, nil
	}
	return &user, nil
}

// Set records the active session. A nil user clears it. The snapshot is
// always stored as a public projection: authentication material never
// reaches the session key.
func (s *SessionStore) Set(user *User) error {
	if user == nil {
		if err := s.kv.Delete(sessionKey); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(user.Public())
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.kv.Set(sessionKey, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
