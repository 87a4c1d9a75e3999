package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui"
)

var tuiFileID string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for Pipewrench.

The TUI lets you chat with the knowledge base, search indexed passages and
continue earlier conversations with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Send / Select
  Ctrl+N   - New conversation
  Esc      - Back
  Ctrl+C   - Quit`,
	Args:        cobra.NoArgs,
	RunE:        runTUI,
	Annotations: queriesIndex(),
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFileID, "file", "", "chat with one file id")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if chatService == nil || retrieverService == nil {
		return unavailable("chat service")
	}

	ports := tui.NewPorts(chatService, retrieverService, sessionService)
	ports.UserID = userID

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context()).WithFile(tuiFileID)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
