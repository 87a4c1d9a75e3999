// Package domain defines the core business entities for Pipewrench.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A document, knowledge report, or uploaded file to index
//   - Chunk: A word-window slice of a source, the unit of retrieval
//   - VectorRecord: An embedded chunk as stored in the vector index
//   - ChatSession / ChatMessage: Persisted knowledge-base conversations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
