// Package memory is a brute-force cosine-similarity store. It serves as the
// fallback index when Weaviate is unreachable and as the store of choice in
// tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"nurseaid/internal/corpus"
	"nurseaid/internal/index"
)

type Builder struct {
	embedder index.Embedder
}

func NewBuilder(embedder index.Embedder) *Builder {
	return &Builder{embedder: embedder}
}

func (b *Builder) Name() string { return "memory" }

func (b *Builder) Build(ctx context.Context, chunks []corpus.Chunk) (index.Retriever, error) {
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := b.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", chunk.ID, err)
		}
		vectors = append(vectors, vec)
	}
	return &Store{embedder: b.embedder, chunks: chunks, vectors: vectors}, nil
}

// Store holds the indexed snapshot. Read-only after Build, so queries need no
// locking.
type Store struct {
	embedder index.Embedder
	chunks   []corpus.Chunk
	vectors  [][]float32
}

func (s *Store) Query(ctx context.Context, question string, k int) ([]index.Result, error) {
	if k <= 0 {
		k = 3
	}
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(s.vectors))
	for i := range s.vectors {
		scores[i] = scored{idx: i, score: cosine(s.vectors[i], vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]index.Result, 0, k)
	for _, sc := range scores[:k] {
		chunk := s.chunks[sc.idx]
		results = append(results, index.Result{
			Content:    chunk.Content,
			Score:      sc.score,
			ChunkID:    chunk.ID,
			SourceFile: chunk.SourceFile,
			SourcePath: chunk.SourcePath,
			Category:   chunk.Category,
			SourceType: chunk.SourceType,
		})
	}
	return results, nil
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
