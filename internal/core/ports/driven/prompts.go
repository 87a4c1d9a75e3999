package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptKnowledgeBaseSystem is the system prompt for knowledge-base chat.
	// This prompt has no format placeholders.
	PromptKnowledgeBaseSystem = "knowledge_base_system"

	// PromptFileSystem is the system prompt for chat scoped to one uploaded file.
	// This prompt has no format placeholders.
	PromptFileSystem = "file_system"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultPrompts holds the built-in text of every well-known prompt.
// Prompt stores fall back to these when no customised prompt exists.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	PromptKnowledgeBaseSystem: `You are a helpful assistant for an organizational knowledge management system.
You help employees find information about procedures, roles, contacts, and organizational knowledge.

Use the provided context from documents and knowledge reports to answer questions.
If you don't have enough information to answer completely, say so and suggest what additional information might be helpful.
Always cite your sources when providing information.`,

	PromptFileSystem: `You are a helpful assistant that answers questions based on the content of an uploaded file.
Use the provided context to answer the user's question accurately and helpfully.

If the answer is not in the provided context, say so clearly.
Always cite the source when providing information.`,
}
