package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

var (
	chatSessionID string
	chatFileID    string
	chatJSON      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask a question about indexed knowledge",
	Long: `Answers a question using the most relevant indexed chunks as context and
prints the sources the answer was grounded on.

With a message, one turn is run and the session id printed so the
conversation can be continued with --session. Without a message, an
interactive prompt is started; type 'exit' or press Ctrl+D to leave.

Use --file to chat with a single uploaded file.`,
	Args:        cobra.MaximumNArgs(1),
	RunE:        runChat,
	Annotations: queriesIndex(),
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "continue an existing session")
	chatCmd.Flags().StringVar(&chatFileID, "file", "", "restrict retrieval to one file id")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output the response as JSON (single message only)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return unavailable("chat service")
	}

	if len(args) == 1 {
		resp, err := chatTurn(cmd.Context(), args[0], chatSessionID)
		if err != nil {
			return err
		}
		if chatJSON {
			return printJSON(cmd, resp)
		}
		printAnswer(cmd, resp)
		cmd.Printf("\nSession: %s\n", resp.SessionID)
		return nil
	}

	return runChatREPL(cmd)
}

func runChatREPL(cmd *cobra.Command) error {
	sessionID := chatSessionID
	scanner := bufio.NewScanner(cmd.InOrStdin())

	cmd.Println("Ask a question. Type 'exit' to quit.")
	for {
		cmd.Print("\n> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, err := chatTurn(cmd.Context(), line, sessionID)
		if err != nil {
			return err
		}
		if sessionID == "" {
			cmd.Printf("(session %s)\n", resp.SessionID)
		}
		sessionID = resp.SessionID

		cmd.Println()
		printAnswer(cmd, resp)
	}
}

func chatTurn(ctx context.Context, message, sessionID string) (*domain.ChatResponse, error) {
	resp, err := chatService.Chat(ctx, domain.ChatRequest{
		Message:   message,
		SessionID: sessionID,
		UserID:    userID,
		FileID:    chatFileID,
	})
	if err != nil {
		return nil, fmt.Errorf("chat failed: %w", err)
	}
	return resp, nil
}

func printAnswer(cmd *cobra.Command, resp *domain.ChatResponse) {
	cmd.Println(resp.Answer)
	printCitations(cmd, resp.Sources)
}
