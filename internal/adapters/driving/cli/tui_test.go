package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_ShortDescription(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
}

func TestTUICmd_HasFileFlag(t *testing.T) {
	assert.NotNil(t, tuiCmd.Flags().Lookup("file"))
}

func TestTUICmd_HelpOutput(t *testing.T) {
	out, err := execute(t, "", "tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "interactive terminal user interface")
	assert.Contains(t, out, "Controls:")
	assert.Contains(t, out, "Ctrl+N")
}

func TestTUICmd_RequiresChatService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	Configure(Services{Retriever: mocks.Retriever})

	_, err := execute(t, "", "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat service not configured")
}
