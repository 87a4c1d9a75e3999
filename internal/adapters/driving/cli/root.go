// Package cli provides the pipewrench command-line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
	"github.com/custodia-labs/pipewrench/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose bool
	userID  string
)

// Services injected by main via Configure.
var (
	retrieverService driving.RetrieverService
	chatService      driving.ChatService
	sessionService   driving.SessionService
	settingsService  driving.SettingsService

	// servicesErr explains why the retrieval and chat services are missing,
	// e.g. an unreachable embedding provider. Settings commands still work.
	servicesErr error

	startupWarnings []string
	warmIndex       func(ctx context.Context)
)

// annotationQueriesIndex marks commands that read from the vector index.
const annotationQueriesIndex = "queries-index"

func queriesIndex() map[string]string {
	return map[string]string{annotationQueriesIndex: "true"}
}

var rootCmd = &cobra.Command{
	Use:   "pipewrench",
	Short: "Chat with your organisation's knowledge",
	Long: `Pipewrench indexes documents and reports into a vector index and answers
questions about them with a language model, citing the passages it used.

Index content with 'pipewrench index', then ask with 'pipewrench chat' or
open the terminal UI with 'pipewrench tui'.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		for _, w := range startupWarnings {
			logger.Warn("%s", w)
		}
		if warmIndex != nil && cmd.Annotations[annotationQueriesIndex] == "true" {
			warmIndex(cmd.Context())
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "user that owns chat sessions")
}

// Services holds the driving ports used by the commands.
type Services struct {
	Retriever driving.RetrieverService
	Chat      driving.ChatService
	Sessions  driving.SessionService
	Settings  driving.SettingsService

	// Err is reported by commands that need a missing service.
	Err error

	// Warnings are logged before each command runs.
	Warnings []string

	// WarmIndex, when set, runs before commands that query the vector
	// index. It rebuilds indexes that do not outlive the process.
	WarmIndex func(ctx context.Context)
}

// Configure injects the services used by the commands.
func Configure(s Services) {
	retrieverService = s.Retriever
	chatService = s.Chat
	sessionService = s.Sessions
	settingsService = s.Settings
	servicesErr = s.Err
	startupWarnings = s.Warnings
	warmIndex = s.WarmIndex
}

// SetVersion sets the version reported by 'pipewrench version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as the MCP server and the TUI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// unavailable returns the error reported when a service was not configured.
func unavailable(name string) error {
	if servicesErr != nil {
		return servicesErr
	}
	return errors.New(name + " not configured")
}
