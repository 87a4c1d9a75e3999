package driven

import "context"

// EmbeddingService maps text to vectors for the retriever. Chunks and
// queries must go through the same service, otherwise scores against the
// VectorIndex are meaningless.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length. It must equal the index dimension.
	Dimensions() int

	ModelName() string

	// Ping checks the provider is reachable.
	Ping(ctx context.Context) error

	Close() error
}
