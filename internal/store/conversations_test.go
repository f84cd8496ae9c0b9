package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qnachat/qnachat/internal/storage"
)

const testUserID = "user-1"

func newConversationStore(t *testing.T) *ConversationStore {
	t.Helper()
	return NewConversationStore(storage.NewMemoryStore())
}

func TestConversationStore_CreateDefaultsTitle(t *testing.T) {
	s := newConversationStore(t)

	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, conversation.Title)
	assert.NotZero(t, conversation.ID)
	assert.Empty(t, conversation.Messages)
	assert.Equal(t, testUserID, conversation.UserID)
}

func TestConversationStore_CreatePrependsNewestFirst(t *testing.T) {
	s := newConversationStore(t)

	first, err := s.Create(testUserID, "first")
	require.NoError(t, err)
	second, err := s.Create(testUserID, "second")
	require.NoError(t, err)

	list := s.List(testUserID)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestConversationStore_IDsAreMonotonic(t *testing.T) {
	s := newConversationStore(t)

	var last int64
	for i := 0; i < 10; i++ {
		conversation, err := s.Create(testUserID, "c")
		require.NoError(t, err)
		assert.Greater(t, conversation.ID, last)
		last = conversation.ID
	}
}

func TestConversationStore_AppendMessageIsAppendOnly(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)

	texts := []string{"one", "two", "three"}
	for i, text := range texts {
		before := s.Messages(testUserID, conversation.ID)

		msg, err := s.AppendMessage(testUserID, conversation.ID, text, SenderUser)
		require.NoError(t, err)
		assert.Equal(t, text, msg.Text)
		assert.NotZero(t, msg.ID)

		after := s.Messages(testUserID, conversation.ID)
		require.Len(t, after, i+1)
		// Prior messages are untouched by the append.
		assert.Equal(t, before, after[:len(before)])
	}
}

func TestConversationStore_AppendMessageConversationNotFound(t *testing.T) {
	s := newConversationStore(t)

	_, err := s.AppendMessage(testUserID, 424242, "hello", SenderUser)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationStore_AppendMessageRejectsUnknownSender(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)

	_, err = s.AppendMessage(testUserID, conversation.ID, "hello", Sender("model"))
	assert.Error(t, err)
}

func TestConversationStore_TitleSetOnceFromFirstUserMessage(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)

	_, err = s.AppendMessage(testUserID, conversation.ID, "what is react", SenderUser)
	require.NoError(t, err)

	got, ok := s.Get(testUserID, conversation.ID)
	require.True(t, ok)
	assert.Equal(t, "what is react", got.Title)

	// Later messages never overwrite the title.
	_, err = s.AppendMessage(testUserID, conversation.ID, "React is a library.", SenderAI)
	require.NoError(t, err)
	_, err = s.AppendMessage(testUserID, conversation.ID, "a much longer follow-up question", SenderUser)
	require.NoError(t, err)

	got, ok = s.Get(testUserID, conversation.ID)
	require.True(t, ok)
	assert.Equal(t, "what is react", got.Title)
}

func TestConversationStore_TitleNotSetByFirstAIMessage(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)

	_, err = s.AppendMessage(testUserID, conversation.ID, "greetings", SenderAI)
	require.NoError(t, err)

	got, ok := s.Get(testUserID, conversation.ID)
	require.True(t, ok)
	assert.Equal(t, DefaultTitle, got.Title)
}

func TestConversationStore_TitleTruncationBoundary(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
	}{
		{"exactly 50 characters, no ellipsis", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"51 characters, truncated with ellipsis", strings.Repeat("x", 51), strings.Repeat("x", 50) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newConversationStore(t)
			conversation, err := s.Create(testUserID, "")
			require.NoError(t, err)

			_, err = s.AppendMessage(testUserID, conversation.ID, tt.text, SenderUser)
			require.NoError(t, err)

			got, ok := s.Get(testUserID, conversation.ID)
			require.True(t, ok)
			assert.Equal(t, tt.title, got.Title)
		})
	}
}

func TestConversationStore_AppendBumpsUpdatedAt(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)

	msg, err := s.AppendMessage(testUserID, conversation.ID, "hello", SenderUser)
	require.NoError(t, err)

	got, ok := s.Get(testUserID, conversation.ID)
	require.True(t, ok)
	assert.Equal(t, msg.Timestamp.Unix(), got.UpdatedAt.Unix())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestConversationStore_UpdateTitle(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)

	require.NoError(t, s.UpdateTitle(testUserID, conversation.ID, "renamed"))

	got, ok := s.Get(testUserID, conversation.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)

	assert.ErrorIs(t, s.UpdateTitle(testUserID, 424242, "x"), ErrConversationNotFound)
}

func TestConversationStore_Delete(t *testing.T) {
	s := newConversationStore(t)
	keep, err := s.Create(testUserID, "keep")
	require.NoError(t, err)
	drop, err := s.Create(testUserID, "drop")
	require.NoError(t, err)

	require.NoError(t, s.Delete(testUserID, drop.ID))

	list := s.List(testUserID)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	// Deleting an already-deleted id is a no-op.
	require.NoError(t, s.Delete(testUserID, drop.ID))
	assert.Len(t, s.List(testUserID), 1)
}

func TestConversationStore_ClearAllThenCreate(t *testing.T) {
	s := newConversationStore(t)
	_, err := s.Create(testUserID, "a")
	require.NoError(t, err)
	_, err = s.Create(testUserID, "b")
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(testUserID))
	assert.Empty(t, s.List(testUserID))

	_, err = s.Create(testUserID, "fresh")
	require.NoError(t, err)
	assert.Len(t, s.List(testUserID), 1)
}

func TestConversationStore_UsersAreIsolated(t *testing.T) {
	s := newConversationStore(t)
	_, err := s.Create("alice", "hers")
	require.NoError(t, err)

	assert.Empty(t, s.List("bob"))

	require.NoError(t, s.ClearAll("bob"))
	assert.Len(t, s.List("alice"), 1)
}

func TestConversationStore_CorruptCollectionTreatedAsEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set("conversations/"+testUserID, []byte("not a json array")))

	s := NewConversationStore(kv)
	assert.Empty(t, s.List(testUserID))

	// The corrupt value was discarded; the store is usable again.
	_, err := s.Create(testUserID, "after corruption")
	require.NoError(t, err)
	assert.Len(t, s.List(testUserID), 1)
}

func TestConversationStore_Export(t *testing.T) {
	s := newConversationStore(t)
	conversation, err := s.Create(testUserID, "")
	require.NoError(t, err)
	_, err = s.AppendMessage(testUserID, conversation.ID, "what is css", SenderUser)
	require.NoError(t, err)

	export, err := s.ExportConversation(testUserID, conversation.ID)
	require.NoError(t, err)
	assert.Contains(t, export, `"what is css"`)
	assert.Contains(t, export, `"title"`)

	// Exporting does not change stored state.
	assert.Len(t, s.Messages(testUserID, conversation.ID), 1)

	_, err = s.ExportConversation(testUserID, 424242)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	all, err := s.ExportAll(testUserID)
	require.NoError(t, err)
	assert.Contains(t, all, `"what is css"`)

	empty, err := s.ExportAll("nobody")
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestConversationStore_MessagesForMissingConversation(t *testing.T) {
	s := newConversationStore(t)
	assert.Nil(t, s.Messages(testUserID, 424242))
}
