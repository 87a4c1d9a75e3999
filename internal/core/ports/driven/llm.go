package driven

import "context"

// LLMService turns an assembled prompt into an answer. The chat service
// owns retrieval and prompt assembly; adapters only translate a Prompt into
// their provider's request shape.
type LLMService interface {
	// Answer returns the model's reply to prompt.
	Answer(ctx context.Context, prompt Prompt) (string, error)

	// ModelName identifies the model, for logs and status output.
	ModelName() string

	// Ping checks the provider is reachable without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// Prompt is a single grounded generation request.
type Prompt struct {
	// System holds the answering instructions.
	System string

	// User holds the question with retrieved context and history rendered in.
	User string

	// MaxTokens caps the answer length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature is passed through when positive.
	Temperature float64
}

// Turn is one role-tagged message of a chat-style provider request.
type Turn struct {
	Role    string
	Content string
}

// Turns renders p for providers that take instructions inline as a
// "system" turn. An empty System is omitted.
func (p Prompt) Turns() []Turn {
	turns := make([]Turn, 0, 2)
	if p.System != "" {
		turns = append(turns, Turn{Role: "system", Content: p.System})
	}
	return append(turns, Turn{Role: "user", Content: p.User})
}
