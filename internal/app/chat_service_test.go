package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-studio/internal/ai"
	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
	"ai-chat-studio/internal/store/jsonfile"
)

// fakeDispatcher records dispatches and answers from a canned script.
type fakeDispatcher struct {
	refs     []ai.ModelRef
	requests []ai.ChatRequest
	reply    string
	err      error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, ref ai.ModelRef, req ai.ChatRequest) (string, error) {
	f.refs = append(f.refs, ref)
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return fmt.Sprintf("reply %d", len(f.requests)), nil
}

type fakeArchiver struct {
	published []model.ArchivedMessage
	err       error
}

func (f *fakeArchiver) Publish(_ context.Context, msg model.ArchivedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func newTestChatService(t *testing.T, dispatcher ModelDispatcher, archiver MessageArchiver) *ChatService {
	t.Helper()
	convs, err := jsonfile.NewConversationStore(t.TempDir())
	require.NoError(t, err)
	return NewChatService(convs, nil, archiver, dispatcher, nil)
}

func TestSendMessageNewConversation(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: "hello to you"}
	svc := newTestChatService(t, dispatcher, nil)

	result, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini - 1.5 Pro (gemini-1.5-pro-001)",
		Prompt:     "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ConversationID)
	assert.Equal(t, "hello to you", result.Reply)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, model.RoleUser, result.Messages[0].Role)
	assert.Equal(t, "hello", result.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, result.Messages[1].Role)

	require.Len(t, dispatcher.refs, 1)
	assert.Equal(t, ai.ProviderGemini, dispatcher.refs[0].Provider)
	assert.Equal(t, "gemini-1.5-pro-001", dispatcher.refs[0].ModelID)
	assert.Empty(t, dispatcher.requests[0].History)

	// The reply was persisted before it was returned.
	conv, err := svc.Get("alice", result.ConversationID)
	require.NoError(t, err)
	saved, err := conv.DecodeMessages()
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestSendMessageContinuesConversation(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := newTestChatService(t, dispatcher, nil)

	first, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "first question",
	})
	require.NoError(t, err)

	second, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:       "alice",
		ConversationID: first.ConversationID,
		ModelLabel:     "Gemini",
		Prompt:         "second question",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Len(t, second.Messages, 4)

	// The second dispatch carried the first exchange as history.
	require.Len(t, dispatcher.requests, 2)
	history := dispatcher.requests[1].History
	require.Len(t, history, 2)
	assert.Equal(t, "first question", history[0].Content)
}

func TestSendMessageContinuesRecentForModel(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := newTestChatService(t, dispatcher, nil)

	first, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "first",
	})
	require.NoError(t, err)

	// No ID: the most recent Gemini conversation continues.
	second, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "second",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// A different label starts its own conversation.
	other, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "OpenAI - GPT-4o (gpt-4o)",
		Prompt:     "hello gpt",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ConversationID, other.ConversationID)

	// ForceNew breaks away from the recent conversation.
	fresh, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ForceNew:   true,
		ModelLabel: "Gemini",
		Prompt:     "start over",
	})
	require.NoError(t, err)
	assert.NotEqual(t, second.ConversationID, fresh.ConversationID)
	assert.Len(t, fresh.Messages, 2)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	svc := newTestChatService(t, &fakeDispatcher{}, nil)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:       "alice",
		ConversationID: "missing",
		ModelLabel:     "Gemini",
		Prompt:         "hi",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSendMessageProviderFailureSavesNothing(t *testing.T) {
	dispatcher := &fakeDispatcher{err: apperror.New(apperror.KindProviderRateLimited, "rate limited")}
	svc := newTestChatService(t, dispatcher, nil)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "hello",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindProviderRateLimited, apperror.KindOf(err))

	recent, err := svc.LoadRecent(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSendMessageValidation(t *testing.T) {
	svc := newTestChatService(t, &fakeDispatcher{}, nil)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{Username: "alice", Prompt: "   "})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.SendMessage(context.Background(), SendMessageInput{Prompt: "hi"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSendMessageArchivesBothTurns(t *testing.T) {
	archiver := &fakeArchiver{}
	svc := newTestChatService(t, &fakeDispatcher{reply: "answer"}, archiver)

	result, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "question",
	})
	require.NoError(t, err)

	require.Len(t, archiver.published, 2)
	assert.Equal(t, model.RoleUser, archiver.published[0].Role)
	assert.Equal(t, "question", archiver.published[0].Content)
	assert.Equal(t, model.RoleAssistant, archiver.published[1].Role)
	assert.Equal(t, result.ConversationID, archiver.published[0].ConversationID)
}

func TestSendMessageArchiveFailureIsSilent(t *testing.T) {
	archiver := &fakeArchiver{err: fmt.Errorf("broker down")}
	svc := newTestChatService(t, &fakeDispatcher{}, archiver)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "question",
	})
	require.NoError(t, err)
}

func TestMostRecentForModel(t *testing.T) {
	svc := newTestChatService(t, &fakeDispatcher{}, nil)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Gemini",
		Prompt:     "gemini question",
	})
	require.NoError(t, err)
	claude, err := svc.SendMessage(context.Background(), SendMessageInput{
		Username:   "alice",
		ModelLabel: "Anthropic - Claude 3.5 Sonnet (claude-3-5-sonnet-20241022)",
		Prompt:     "claude question",
	})
	require.NoError(t, err)

	got, err := svc.MostRecentForModel("alice", "Anthropic - Claude 3.5 Sonnet (claude-3-5-sonnet-20241022)")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, claude.ConversationID, got.ID)

	none, err := svc.MostRecentForModel("alice", "Perplexity - 70B Online (pplx-70b-online)")
	require.NoError(t, err)
	assert.Nil(t, none)
}
