package store

import "errors"

var (
	// ErrDuplicateUser is returned by user creation when the email is
	// already registered.
	ErrDuplicateUser = errors.New("user with this email already exists")

	// ErrUserNotFound is returned when no user record matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredential is returned on a password mismatch.
	ErrInvalidCredential = errors.New("invalid password")

	// ErrConversationNotFound is returned when a conversation id does not
	// exist for the given user. It indicates a stale id on the caller's
	// side and is always surfaced.
	ErrConversationNotFound = errors.New("conversation not found")
)
