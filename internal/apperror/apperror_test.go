package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := Wrap(KindStorageUnavailable, "storage is unavailable", errors.New("dial tcp: refused"))
	assert.Equal(t, KindStorageUnavailable, KindOf(err))

	wrapped := fmt.Errorf("save conversation failed: %w", err)
	assert.Equal(t, KindStorageUnavailable, KindOf(wrapped))

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.True(t, Is(wrapped, KindStorageUnavailable))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "invalid username or password", Message(InvalidCredentials()))
	assert.Equal(t, "conversation not found", Message(NotFound("conversation")))

	// Plain errors never leak their text to callers.
	assert.Equal(t, "internal server error", Message(errors.New("pq: relation missing")))
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindProviderUnavailable, "gemini is unavailable", cause)
	assert.Contains(t, err.Error(), "provider_unavailable")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)
}
