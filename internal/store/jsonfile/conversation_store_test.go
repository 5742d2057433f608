package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-studio/internal/model"
)

func newConversation(t *testing.T, id, username, label string, updated time.Time) *model.Conversation {
	t.Helper()
	conv := &model.Conversation{
		ID:          id,
		Username:    username,
		Model:       label,
		Timestamp:   updated,
		LastUpdated: updated,
	}
	require.NoError(t, conv.SetMessages([]model.ChatMessage{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi, how can I help?"},
	}))
	return conv
}

func TestConversationStoreSaveAndGet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConversationStore(dir)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	conv := newConversation(t, "conv-1", "alice", "Gemini - 1.5 Pro (gemini-1.5-pro-001)", now)
	require.NoError(t, store.Save(conv))

	// Conversations land in the per-user file.
	_, err = os.Stat(filepath.Join(dir, "alice_conversations.json"))
	require.NoError(t, err)

	got, err := store.Get("alice", "conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conv.Model, got.Model)
	assert.JSONEq(t, string(conv.Messages), string(got.Messages))

	missing, err := store.Get("alice", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestConversationStoreSaveReplacesByID(t *testing.T) {
	store, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)

	now := time.Now().UTC()
	conv := newConversation(t, "conv-1", "alice", "label", now)
	require.NoError(t, store.Save(conv))

	require.NoError(t, conv.SetMessages([]model.ChatMessage{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi"},
		{Role: model.RoleUser, Content: "follow-up"},
		{Role: model.RoleAssistant, Content: "answer"},
	}))
	conv.LastUpdated = now.Add(time.Minute)
	require.NoError(t, store.Save(conv))

	all, err := store.LoadRecent("alice", 10)
	require.NoError(t, err)
	require.Len(t, all, 1)

	messages, err := all[0].DecodeMessages()
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestConversationStoreLoadRecentOrdering(t *testing.T) {
	store, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)

	base := time.Now().UTC()
	require.NoError(t, store.Save(newConversation(t, "old", "bob", "label", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(newConversation(t, "newest", "bob", "label", base)))
	require.NoError(t, store.Save(newConversation(t, "middle", "bob", "label", base.Add(-time.Hour))))

	recent, err := store.LoadRecent("bob", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "newest", recent[0].ID)
	assert.Equal(t, "middle", recent[1].ID)
}

func TestConversationStoreLoadRecentEmpty(t *testing.T) {
	store, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)

	recent, err := store.LoadRecent("nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestConversationStoreMostRecentForModel(t *testing.T) {
	store, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)

	base := time.Now().UTC()
	require.NoError(t, store.Save(newConversation(t, "g-old", "carol", "gemini-label", base.Add(-time.Hour))))
	require.NoError(t, store.Save(newConversation(t, "g-new", "carol", "gemini-label", base)))
	require.NoError(t, store.Save(newConversation(t, "c-only", "carol", "claude-label", base.Add(time.Hour))))

	got, err := store.MostRecentForModel("carol", "gemini-label")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "g-new", got.ID)

	none, err := store.MostRecentForModel("carol", "unknown-label")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestConversationFileLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConversationStore(dir)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(newConversation(t, "conv-1", "dave", "label", now)))

	raw, err := os.ReadFile(filepath.Join(dir, "dave_conversations.json"))
	require.NoError(t, err)

	var decoded []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	for _, key := range []string{"id", "user", "model", "timestamp", "last_updated", "messages"} {
		assert.Contains(t, decoded[0], key)
	}
}
