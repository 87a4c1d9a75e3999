// Package mcp provides an MCP (Model Context Protocol) server adapter for Pipewrench.
// It lets AI assistants search the knowledge base, ask grounded questions
// and read chat session history.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever service is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever service is required")

// errChatUnavailable is returned by the chat tool when no chat service is wired.
var errChatUnavailable = errors.New("mcp: chat service is not configured")
