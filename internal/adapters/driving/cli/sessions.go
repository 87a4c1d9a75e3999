package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions",
	Long:  `Lists the chat sessions of the current user, most recent activity first.`,
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show the messages of a chat session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "output sessions as JSON")
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(historyCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return unavailable("session service")
	}

	sessions, err := sessionService.ListSessions(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionsJSON {
		return printJSON(cmd, sessions)
	}

	if len(sessions) == 0 {
		cmd.Println("No chat sessions.")
		return nil
	}

	for i := range sessions {
		title := sessions[i].Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("%s  %s  %s\n", sessions[i].ID, sessions[i].UpdatedAt.Local().Format(timeFormat), title)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return unavailable("session service")
	}

	messages, err := sessionService.Transcript(cmd.Context(), args[0], userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	for i := range messages {
		m := &messages[i]
		if i > 0 {
			cmd.Println()
		}
		cmd.Printf("[%s] %s\n", m.CreatedAt.Local().Format(timeFormat), roleLabel(m.Role))
		cmd.Println(m.Content)
		printCitations(cmd, m.Citations)
	}
	return nil
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleUser:
		return "You"
	case domain.RoleAssistant:
		return "Assistant"
	case domain.RoleSystem:
		return "System"
	default:
		return string(r)
	}
}
