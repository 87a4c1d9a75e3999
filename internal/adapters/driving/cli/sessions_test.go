package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

func TestSessionsCmd_List(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Sessions.Sessions = []domain.ChatSession{
		{ID: "sess-1", UserID: "bob", Title: "Ingest recovery", UpdatedAt: fixedTime},
		{ID: "sess-2", UserID: "bob", UpdatedAt: fixedTime},
	}

	out, err := execute(t, "", "sessions", "--user", "bob")

	require.NoError(t, err)
	assert.Equal(t, "bob", mocks.Sessions.LastUserID)
	assert.Contains(t, out, "sess-1")
	assert.Contains(t, out, "Ingest recovery")
	assert.Contains(t, out, "(untitled)")
}

func TestSessionsCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "sessions")

	require.NoError(t, err)
	assert.Contains(t, out, "No chat sessions.")
	assert.Equal(t, "local", mocks.Sessions.LastUserID)
}

func TestSessionsCmd_MissingService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	Configure(Services{})

	_, err := execute(t, "", "sessions")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session service not configured")
}

func TestHistoryCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Sessions.Messages = []domain.ChatMessage{
		{ID: 1, SessionID: "sess-1", Role: domain.RoleUser, Content: "How do I recover ingest?", CreatedAt: fixedTime},
		{
			ID: 2, SessionID: "sess-1", Role: domain.RoleAssistant, Content: "Restart the worker.",
			Citations: []domain.Citation{{Source: "Runbook (Chunk 1)", Score: 0.8}},
			CreatedAt: fixedTime,
		},
	}

	out, err := execute(t, "", "history", "sess-1")

	require.NoError(t, err)
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "How do I recover ingest?")
	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "[1] Runbook (Chunk 1) (0.80)")
}

func TestHistoryCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Sessions.Err = domain.ErrNotFound

	_, err := execute(t, "", "history", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryCmd_RequiresSessionID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
