package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"nurseaid/internal/corpus"
	"nurseaid/internal/index"
	"nurseaid/internal/vector"
)

const batchSize = 100

// Builder indexes a corpus snapshot into Weaviate and returns a Retriever
// over it. The chunk class is dropped and recreated on every build because a
// load pass replaces the previous snapshot wholesale.
type Builder struct {
	client   *weaviate.Client
	embedder index.Embedder
}

func NewBuilder(client *weaviate.Client, embedder index.Embedder) *Builder {
	return &Builder{client: client, embedder: embedder}
}

func (b *Builder) Name() string { return "weaviate" }

func (b *Builder) Build(ctx context.Context, chunks []corpus.Chunk) (index.Retriever, error) {
	if err := vector.ResetSchema(ctx, vector.NewWeaviateClientAdapter(b.client)); err != nil {
		return nil, fmt.Errorf("reset schema: %w", err)
	}

	objects := make([]*models.Object, 0, batchSize)
	flush := func() error {
		if len(objects) == 0 {
			return nil
		}
		res, err := b.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return err
		}
		for _, obj := range res {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("batch insert: %s", obj.Result.Errors.Error[0].Message)
			}
		}
		objects = objects[:0]
		return nil
	}

	for _, chunk := range chunks {
		vec, err := b.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", chunk.ID, err)
		}
		objects = append(objects, &models.Object{
			Class: vector.ClassName,
			Properties: map[string]interface{}{
				"content":    chunk.Content,
				"sourceFile": chunk.SourceFile,
				"sourcePath": chunk.SourcePath,
				"category":   chunk.Category,
				"sourceType": chunk.SourceType,
				"chunkId":    chunk.ID,
			},
			Vector: models.C11yVector(vec),
		})
		if len(objects) == batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return &Store{client: b.client, embedder: b.embedder}, nil
}

// Store answers top-k nearest-vector queries against the chunk class.
type Store struct {
	client   *weaviate.Client
	embedder index.Embedder
}

func (s *Store) Query(ctx context.Context, question string, k int) ([]index.Result, error) {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "sourceFile"},
		{Name: "sourcePath"},
		{Name: "category"},
		{Name: "sourceType"},
		{Name: "chunkId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []index.Result
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	rows, ok := data[vector.ClassName].([]interface{})
	if !ok {
		return results, nil
	}
	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		result := index.Result{}
		if v, ok := props["content"].(string); ok {
			result.Content = v
		}
		if v, ok := props["sourceFile"].(string); ok {
			result.SourceFile = v
		}
		if v, ok := props["sourcePath"].(string); ok {
			result.SourcePath = v
		}
		if v, ok := props["category"].(string); ok {
			result.Category = v
		}
		if v, ok := props["sourceType"].(string); ok {
			result.SourceType = v
		}
		if v, ok := props["chunkId"].(float64); ok {
			result.ChunkID = int(v)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				result.Score = float32(certainty)
			}
		}
		results = append(results, result)
	}
	return results, nil
}
