package core

import (
	"fmt"

	"github.com/qnachat/qnachat/internal/store"
)

// ChatService ties the conversation store to the answer matcher: it owns
// the user-message → matched-answer → ai-message flow and fronts all
// conversation operations for the API layer.
type ChatService struct {
	conversations *store.ConversationStore
	qna           *QnAService
}

func NewChatService(conversations *store.ConversationStore, qna *QnAService) *ChatService {
	return &ChatService{conversations: conversations, qna: qna}
}

// CreateConversation starts a new conversation for the user. When a first
// message is supplied, it is posted immediately, which derives the title
// and produces the first answer; the returned conversation reflects that.
func (s *ChatService) CreateConversation(userID string, firstMessage *string) (store.Conversation, error) {
	conversation, err := s.conversations.Create(userID, "")
	if err != nil {
		return store.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}

	if firstMessage != nil && *firstMessage != "" {
		if _, _, err := s.PostMessage(userID, conversation.ID, *firstMessage); err != nil {
			return store.Conversation{}, err
		}
		updated, ok := s.conversations.Get(userID, conversation.ID)
		if !ok {
			return store.Conversation{}, store.ErrConversationNotFound
		}
		conversation = updated
	}

	return conversation, nil
}

func (s *ChatService) ListConversations(userID string) []store.Conversation {
	return s.conversations.List(userID)
}

func (s *ChatService) GetConversation(userID string, conversationID int64) (store.Conversation, bool) {
	return s.conversations.Get(userID, conversationID)
}

// PostMessage appends the user's message, computes a reply from the QnA
// table, and appends that as the ai message. Both stored messages are
// returned. Fails with store.ErrConversationNotFound for a stale id.
func (s *ChatService) PostMessage(userID string, conversationID int64, text string) (store.Message, store.Message, error) {
	userMessage, err := s.conversations.AppendMessage(userID, conversationID, text, store.SenderUser)
	if err != nil {
		return store.Message{}, store.Message{}, err
	}

	answer := s.qna.GenerateResponse(text)

	aiMessage, err := s.conversations.AppendMessage(userID, conversationID, answer, store.SenderAI)
	if err != nil {
		return store.Message{}, store.Message{}, fmt.Errorf("failed to store answer: %w", err)
	}

	return userMessage, aiMessage, nil
}

// GetMessagesFor returns the conversation's messages in insertion order,
// or nil when the conversation does not exist.
func (s *ChatService) GetMessagesFor(userID string, conversationID int64) []store.Message {
	return s.conversations.Messages(userID, conversationID)
}

func (s *ChatService) RenameConversation(userID string, conversationID int64, title string) error {
	return s.conversations.UpdateTitle(userID, conversationID, title)
}

func (s *ChatService) DeleteConversation(userID string, conversationID int64) error {
	return s.conversations.Delete(userID, conversationID)
}

func (s *ChatService) ClearAll(userID string) error {
	return s.conversations.ClearAll(userID)
}

func (s *ChatService) ExportConversation(userID string, conversationID int64) (string, error) {
	return s.conversations.ExportConversation(userID, conversationID)
}

func (s *ChatService) ExportAll(userID string) (string, error) {
	return s.conversations.ExportAll(userID)
}
