package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"the question or keywords to look up"`
	TopK   int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
	FileID string `json:"file_id,omitempty" jsonschema:"restrict the search to one uploaded file"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	RecordID string  `json:"record_id"`
	Source   string  `json:"source"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	Message   string `json:"message" jsonschema:"the question to answer from the knowledge base"`
	SessionID string `json:"session_id,omitempty" jsonschema:"continue an existing session; omit to start a new one"`
	FileID    string `json:"file_id,omitempty" jsonschema:"answer from one uploaded file only"`
}

// IndexTextInput is the input schema for the index_text tool.
type IndexTextInput struct {
	FileID   string `json:"file_id" jsonschema:"identifier to scope later searches and chats to"`
	Filename string `json:"filename,omitempty" jsonschema:"name used in citations"`
	Content  string `json:"content" jsonschema:"the text to index"`
}

// IndexTextOutput is the output schema for the index_text tool.
type IndexTextOutput struct {
	FileID string `json:"file_id"`
	Chunks int    `json:"chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the knowledge-base chunks most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask a question answered from the knowledge base, with citations",
	}, s.handleChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_text",
		Description: "Index a piece of text as an uploaded file for file-scoped search and chat",
	}, s.handleIndexText)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{TopK: input.TopK, FileID: input.FileID}
	results, err := s.ports.Retriever.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			RecordID: results[i].RecordID,
			Source:   results[i].Source,
			Score:    results[i].Score,
			Content:  results[i].Content,
		}
	}

	return nil, output, nil
}

// handleChat handles the chat tool invocation.
func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, domain.ChatResponse, error) {
	if s.ports.Chat == nil {
		return nil, domain.ChatResponse{}, errChatUnavailable
	}

	resp, err := s.ports.Chat.Chat(ctx, domain.ChatRequest{
		Message:   input.Message,
		SessionID: input.SessionID,
		UserID:    s.ports.userID(),
		FileID:    input.FileID,
	})
	if err != nil {
		return nil, domain.ChatResponse{}, err
	}

	return nil, *resp, nil
}

// handleIndexText handles the index_text tool invocation.
func (s *Server) handleIndexText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexTextInput,
) (*mcp.CallToolResult, IndexTextOutput, error) {
	filename := input.Filename
	if filename == "" {
		filename = input.FileID
	}

	n, err := s.ports.Retriever.IndexFile(ctx, input.FileID, filename, input.Content)
	if err != nil {
		return nil, IndexTextOutput{}, err
	}

	return nil, IndexTextOutput{FileID: input.FileID, Chunks: n}, nil
}
