package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qnachat/qnachat/internal/auth"
	"github.com/qnachat/qnachat/internal/store"
)

// AuthService handles registration, authentication, and the remembered
// active session. All returned users are public projections; password
// hashes never leave the store layer.
type AuthService struct {
	users    *store.UserStore
	sessions *store.SessionStore
}

func NewAuthService(users *store.UserStore, sessions *store.SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Register creates a user with a generated id and a bcrypt-hashed
// password. An empty name defaults to the local part of the email.
// Fails with store.ErrDuplicateUser when the email is already registered.
func (s *AuthService) Register(email, password, name string) (store.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := store.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    time.Now(),
	}

	created, err := s.users.Create(user)
	if err != nil {
		return store.User{}, err
	}
	return created.Public(), nil
}

// Authenticate checks the credentials and returns the matching user.
// Fails with store.ErrUserNotFound when the email is unknown and with
// store.ErrInvalidCredential on a password mismatch.
func (s *AuthService) Authenticate(email, password string) (store.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return store.User{}, err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return store.User{}, store.ErrInvalidCredential
	}
	return user.Public(), nil
}

// GetUser resolves a user id (e.g. a token subject) to its public
// projection.
func (s *AuthService) GetUser(id string) (store.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return store.User{}, err
	}
	return user.Public(), nil
}

// ActiveSession returns the currently remembered session user, or nil.
func (s *AuthService) ActiveSession() (*store.User, error) {
	return s.sessions.Get()
}

// SetActiveSession records the session user; nil clears it.
func (s *AuthService) SetActiveSession(user *store.User) error {
	return s.sessions.Set(user)
}
