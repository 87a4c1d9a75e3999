package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search, chat and history to MCP clients",
	Long: `Serve the knowledge base over the Model Context Protocol.

Tools: search, chat, index_text. Resources: chat sessions and their messages.

Without --port the server speaks JSON-RPC on stdin and stdout, which is how
desktop assistants launch it. With --port it serves streamable HTTP at /mcp
and a liveness probe at /healthz.`,
	Example: `  # stdio, for an assistant's config file
  pipewrench mcp serve

  # HTTP on all interfaces
  pipewrench mcp serve --port 8080 --host 0.0.0.0

Assistant configuration:
  {"mcpServers": {"pipewrench": {"command": "/path/to/pipewrench", "args": ["mcp", "serve"]}}}`,
	RunE:        runMCPServe,
	Annotations: queriesIndex(),
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if retrieverService == nil {
		return unavailable("retriever")
	}
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retriever: retrieverService,
		Chat:      chatService,
		Sessions:  sessionService,
		UserID:    userID,
		Version:   version,
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s/mcp\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
