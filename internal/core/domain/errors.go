package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// An explicit chat session id that is unknown reports this error.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates invalid or missing configuration, such as
	// a chunk overlap that is not smaller than the chunk size.
	// Configuration errors are fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrRetrieval indicates the embedding provider or the vector index failed.
	// Chat degrades to an empty context when retrieval fails.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the language model failed or returned malformed output.
	// Chat converts this error into an apology answer.
	ErrGeneration = errors.New("generation failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")
)
