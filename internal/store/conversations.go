package store

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/qnachat/qnachat/internal/storage"
	"github.com/qnachat/qnachat/internal/utils"
)

// DefaultTitle names a conversation until its first user message arrives.
const DefaultTitle = "New Chat"

// titleMaxLen is the truncation boundary for titles derived from the first
// user message.
const titleMaxLen = 50

func conversationsKey(userID string) string {
	return "conversations/" + userID
}

// ConversationStore persists each user's conversations as one JSON array
// under a per-user key, newest conversation first. All mutations are
// whole-collection replace-on-write.
type ConversationStore struct {
	kv  storage.Store
	mu  sync.Mutex
	ids idGenerator
}

func NewConversationStore(kv storage.Store) *ConversationStore {
	return &ConversationStore{kv: kv}
}

func (s *ConversationStore) load(userID string) []Conversation {
	data, ok, err := s.kv.Get(conversationsKey(userID))
	if err != nil {
		log.Printf("Error reading conversations for user %s: %v", userID, err)
		return nil
	}
	if !ok {
		return nil
	}

	var conversations []Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		log.Printf("Discarding corrupt conversations for user %s: %v", userID, err)
		if err := s.kv.Delete(conversationsKey(userID)); err != nil {
			log.Printf("Error clearing corrupt conversations for user %s: %v", userID, err)
		}
		return nil
	}
	return conversations
}

func (s *ConversationStore) save(userID string, conversations []Conversation) error {
	if conversations == nil {
		conversations = []Conversation{}
	}
	data, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	if err := s.kv.Set(conversationsKey(userID), data); err != nil {
		return fmt.Errorf("failed to save conversations: %w", err)
	}
	return nil
}

// List returns the user's conversations in stored order: new conversations
// are prepended, so the most recently created comes first.
func (s *ConversationStore) List(userID string) []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID)
}

// Create prepends a new empty conversation to the user's list. An empty
// title falls back to DefaultTitle.
func (s *ConversationStore) Create(userID, title string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		title = DefaultTitle
	}

	now := time.Now()
	conversation := Conversation{
		ID:        s.ids.next(),
		UserID:    userID,
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	conversations := append([]Conversation{conversation}, s.load(userID)...)
	if err := s.save(userID, conversations); err != nil {
		return Conversation{}, err
	}
	return conversation, nil
}

func (s *ConversationStore) Get(userID string, conversationID int64) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.load(userID) {
		if c.ID == conversationID {
			return c, true
		}
	}
	return Conversation{}, false
}

// AppendMessage adds a message to the conversation. The message id and
// timestamp are generated here. The first message, when sent by the user,
// also sets the conversation title (once, never overwritten later) to the
// first 50 characters of the text plus an ellipsis marker if truncated.
func (s *ConversationStore) AppendMessage(userID string, conversationID int64, text string, sender Sender) (Message, error) {
	if !sender.Valid() {
		return Message{}, fmt.Errorf("invalid sender %q", sender)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.load(userID)
	idx := -1
	for i := range conversations {
		if conversations[i].ID == conversationID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Message{}, ErrConversationNotFound
	}

	message := Message{
		ID:        s.ids.next(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}

	conversation := &conversations[idx]
	conversation.Messages = append(conversation.Messages, message)
	conversation.UpdatedAt = message.Timestamp

	if len(conversation.Messages) == 1 && sender == SenderUser {
		conversation.Title = utils.TruncateWithEllipsis(text, titleMaxLen)
	}

	if err := s.save(userID, conversations); err != nil {
		return Message{}, err
	}
	return message, nil
}

// Messages returns the conversation's ordered message list, or nil when
// the conversation does not exist.
func (s *ConversationStore) Messages(userID string, conversationID int64) []Message {
	conversation, ok := s.Get(userID, conversationID)
	if !ok {
		return nil
	}
	return conversation.Messages
}

// UpdateTitle renames a conversation explicitly (as opposed to the
// once-only title derivation in AppendMessage).
func (s *ConversationStore) UpdateTitle(userID string, conversationID int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.load(userID)
	for i := range conversations {
		if conversations[i].ID == conversationID {
			conversations[i].Title = title
			conversations[i].UpdatedAt = time.Now()
			return s.save(userID, conversations)
		}
	}
	return ErrConversationNotFound
}

// Delete removes one conversation. Deleting an id that is already gone is
// not an error.
func (s *ConversationStore) Delete(userID string, conversationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.load(userID)
	filtered := conversations[:0]
	for _, c := range conversations {
		if c.ID != conversationID {
			filtered = append(filtered, c)
		}
	}
	return s.save(userID, filtered)
}

// ClearAll drops the user's entire conversation collection.
func (s *ConversationStore) ClearAll(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(conversationsKey(userID)); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}
	return nil
}

// ExportConversation serializes one conversation (id, title, full message
// list) as indented JSON text. Read-only.
func (s *ConversationStore) ExportConversation(userID string, conversationID int64) (string, error) {
	conversation, ok := s.Get(userID, conversationID)
	if !ok {
		return "", ErrConversationNotFound
	}
	data, err := json.MarshalIndent(conversation, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export conversation: %w", err)
	}
	return string(data), nil
}

// ExportAll serializes the user's full conversation list as indented JSON
// text. Read-only.
func (s *ConversationStore) ExportAll(userID string) (string, error) {
	conversations := s.List(userID)
	if conversations == nil {
		conversations = []Conversation{}
	}
	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export conversations: %w", err)
	}
	return string(data), nil
}
