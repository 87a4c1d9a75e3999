// Package driving holds the use cases the CLI, TUI and MCP server call
// into: indexing and search, grounded chat, session history and settings.
// internal/core/services implements them; adapters depend only on these
// interfaces.
package driving
