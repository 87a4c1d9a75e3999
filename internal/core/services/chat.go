package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
	"github.com/custodia-labs/pipewrench/internal/logger"
)

// Ensure ChatService implements the interfaces.
var (
	_ driving.ChatService     = (*ChatService)(nil)
	_ driven.PromptStoreAware = (*ChatService)(nil)
)

// ChatService runs retrieval-augmented chat turns.
//
// Retrieval failures degrade to an empty context and generation failures to
// an apology answer, so only configuration, not-found and invalid-input
// errors reach callers.
type ChatService struct {
	retriever driving.RetrieverService
	sessions  *SessionService
	llm       driven.LLMService
	prompts   driven.PromptStore
	settings  domain.ChatSettings
}

// NewChatService creates a new chat service. llm may be nil, in which case
// every turn is answered with the apology.
func NewChatService(
	retriever driving.RetrieverService,
	sessions *SessionService,
	llm driven.LLMService,
	settings domain.ChatSettings,
) *ChatService {
	defaults := domain.DefaultAppSettings().Chat
	if settings.TopK <= 0 {
		settings.TopK = defaults.TopK
	}
	if settings.HistoryLimit <= 0 {
		settings.HistoryLimit = defaults.HistoryLimit
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = defaults.MaxTokens
	}
	if settings.GenerateTimeout <= 0 {
		settings.GenerateTimeout = defaults.GenerateTimeout
	}

	return &ChatService{
		retriever: retriever,
		sessions:  sessions,
		llm:       llm,
		settings:  settings,
	}
}

// SetPromptStore sets the store system prompts are loaded from.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Chat runs one turn: resolve the session, retrieve, assemble the prompt,
// generate, then persist the user and assistant messages.
func (s *ChatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}

	sessionID, err := s.sessions.GetOrCreateSession(ctx, req.SessionID, req.UserID)
	if err != nil {
		return nil, err
	}

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	logger.Section("Chat turn")
	logger.Debug("Session: %s, file: %q", sessionID, req.FileID)

	results, err := s.retriever.Search(ctx, message, domain.SearchOptions{TopK: s.settings.TopK, FileID: req.FileID})
	if err != nil {
		if s.settings.StrictRetrieval {
			return nil, err
		}
		logger.Warn("Retrieval failed, continuing without context: %v", err)
		results = nil
	}

	history, err := s.sessions.History(ctx, sessionID, s.settings.HistoryLimit)
	if err != nil {
		logger.Warn("Loading history failed, continuing without it: %v", err)
		history = nil
	}

	system := s.systemPrompt(req.FileID)
	prompt := buildUserPrompt(results, history, message)
	logger.Debug("Prompt: %d chars, %d sources, %d history messages", len(prompt), len(results), len(history))

	answer, degraded := s.generate(ctx, system, prompt)

	citations := make([]domain.Citation, len(results))
	for i, r := range results {
		citations[i] = domain.NewCitation(r)
	}

	// Persisting is best effort once an answer exists
	if _, err := s.sessions.AppendMessage(ctx, sessionID, domain.RoleUser, message, nil); err != nil {
		logger.Error("Saving user message to session %s: %v", sessionID, err)
	} else if _, err := s.sessions.AppendMessage(ctx, sessionID, domain.RoleAssistant, answer, citations); err != nil {
		logger.Error("Saving assistant message to session %s: %v", sessionID, err)
	}

	return &domain.ChatResponse{
		Answer:    answer,
		SessionID: sessionID,
		Sources:   citations,
		Degraded:  degraded,
	}, nil
}

// generate calls the LLM under the generation timeout. Any failure yields
// the apology answer with degraded set.
func (s *ChatService) generate(ctx context.Context, system, prompt string) (answer string, degraded bool) {
	if s.llm == nil {
		logger.Warn("Generation skipped: %v", domain.ErrLLMUnavailable)
		return apologyAnswer, true
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.GenerateTimeout)
	defer cancel()

	defer logger.Timed("Generation with " + s.llm.ModelName())()
	answer, err := s.llm.Answer(ctx, driven.Prompt{
		System:      system,
		User:        prompt,
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errors.New("empty answer")
	}
	if err != nil {
		logger.Error("%v: %v", domain.ErrGeneration, err)
		return apologyAnswer, true
	}

	logger.Debug("Answer: %d chars", len(answer))
	return strings.TrimSpace(answer), false
}

func (s *ChatService) systemPrompt(fileID string) string {
	name := systemPromptName(fileID)
	if s.prompts != nil {
		prompt, err := s.prompts.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		logger.Warn("Loading prompt %q failed, using default: %v", name, err)
	}
	return driven.DefaultPrompts[name]
}
