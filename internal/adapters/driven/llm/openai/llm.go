// Package openai answers grounded prompts with the OpenAI chat completions API
// or any endpoint compatible with it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the adapter. Only APIKey is required; BaseURL may
// point at any OpenAI-compatible server.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService implements driven.LLMService over go-openai.
type LLMService struct {
	client *goopenai.Client
	model  string
}

// NewLLMService fills defaults for unset fields and builds the client.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Answer sends prompt as a system and user turn to the chat completions API.
func (s *LLMService) Answer(ctx context.Context, prompt driven.Prompt) (string, error) {
	turns := prompt.Turns()
	req := goopenai.ChatCompletionRequest{
		Model:    s.model,
		Messages: make([]goopenai.ChatCompletionMessage, len(turns)),
	}
	for i, turn := range turns {
		req.Messages[i] = goopenai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content}
	}
	if prompt.MaxTokens > 0 {
		req.MaxTokens = prompt.MaxTokens
	}
	if prompt.Temperature > 0 {
		req.Temperature = float32(prompt.Temperature)
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no response choices returned")
	}
	if reason := resp.Choices[0].FinishReason; reason == goopenai.FinishReasonContentFilter {
		return "", fmt.Errorf("openai: answer withheld (%s)", reason)
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

func (s *LLMService) Close() error {
	return nil
}
