// Package index defines the retrieval-index contract the QA pipeline depends
// on. The core only needs "add documents" and "top-k query"; how similarity is
// computed lives behind the Retriever implementations.
package index

import (
	"context"

	"nurseaid/internal/corpus"
)

// Result is one retrieved chunk with its similarity score and provenance.
type Result struct {
	Content    string
	Score      float32
	ChunkID    int
	SourceFile string
	SourcePath string
	Category   string
	SourceType string
}

// Embedder maps text to a vector. It is an external capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever answers top-k similarity queries over an indexed snapshot.
type Retriever interface {
	Query(ctx context.Context, question string, k int) ([]Result, error)
}

// Builder constructs a Retriever over a chunk collection. Builders are tried
// in order during pipeline initialization; the first success wins.
type Builder interface {
	Name() string
	Build(ctx context.Context, chunks []corpus.Chunk) (Retriever, error)
}
