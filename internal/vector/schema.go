package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

const ClassName = "ClinicalChunk"

// SchemaClient is the slice of the Weaviate schema API the bootstrap needs.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	DeleteClass(ctx context.Context, className string) error
}

// ResetSchema drops any existing chunk class and recreates it empty. A load
// pass fully replaces the previous snapshot, so stale objects must not
// survive into the new index.
func ResetSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return err
	}
	if exists {
		if err := client.DeleteClass(ctx, ClassName); err != nil {
			return err
		}
	}

	class := &models.Class{
		Class:       ClassName,
		Description: "A chunk of a clinical document",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "sourceFile", DataType: []string{"string"}},
			{Name: "sourcePath", DataType: []string{"string"}},
			{Name: "category", DataType: []string{"string"}},
			{Name: "sourceType", DataType: []string{"string"}},
			{Name: "chunkId", DataType: []string{"int"}},
		},
	}
	return client.CreateClass(ctx, class)
}
