package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// Fallback answer when generation fails. The turn is still recorded.
const apologyAnswer = "I apologize, but I encountered an error while processing your question. Please try again later."

// promptInstruction closes every user prompt.
const promptInstruction = "Please provide a helpful response based on the context above. Include relevant source citations."

// systemPromptName selects the system prompt for the chat mode.
func systemPromptName(fileID string) string {
	if fileID != "" {
		return driven.PromptFileSystem
	}
	return driven.PromptKnowledgeBaseSystem
}

// buildContext renders retrieved chunks as numbered source blocks.
func buildContext(results []domain.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[Source %d: %s]\n%s\n\n", i+1, r.Source, r.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildHistory renders prior turns one per line, oldest first.
func buildHistory(messages []domain.ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildUserPrompt assembles the grounded prompt sent as the user turn.
func buildUserPrompt(results []domain.SearchResult, history []domain.ChatMessage, query string) string {
	return fmt.Sprintf("Context from knowledge base:\n%s\n\nPrevious conversation:\n%s\n\nUser question: %s\n\n%s",
		buildContext(results), buildHistory(history), query, promptInstruction)
}
