// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns chunk and query text into vectors
//   - VectorIndex: Stores vectors and answers similarity queries
//   - SessionStore: Chat session and message persistence
//   - SourceStore: Catalogue of indexed documents, reports and files
//   - ConfigStore: Application configuration
//   - PromptStore: System prompt templates
//   - Chunker: Splits normalised text into overlapping chunks
//   - Normaliser: Cleans raw file bytes into indexable text
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it every chat turn returns the fallback answer.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
