package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nurseaid/internal/history"
	"nurseaid/internal/testutils"
)

func TestHistoryRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	repo := history.NewPostgresRepo(s.DB)
	ctx := context.Background()

	first := &history.Entry{Question: "how do I flush the line", Answer: "Flush with saline.", Success: true}
	require.NoError(t, repo.Save(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &history.Entry{Question: "phone number for radiology", Answer: "No valid phone number found for radiology.", Success: false}
	require.NoError(t, repo.Save(ctx, second))

	entries, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.Clear(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
