package store

import "time"

// Sender identifies who authored a message. It is a closed set: only the
// two constants below are valid, and every stored message carries one.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAI
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the user without authentication material. Everything that
// leaves the store layer (API responses, session snapshots) is a public
// projection.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

type Conversation struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is immutable once created: messages are appended to a
// conversation and never edited or reordered.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}
