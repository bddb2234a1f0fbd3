package indexing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/types"
)

func TestInMemoryVectorStore_ImplementsVectorStore(t *testing.T) {
	var _ VectorStore = (*InMemoryVectorStore)(nil)
}

func TestInMemoryVectorStore_UpsertGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryVectorStore(0, zap.NewNop())

	require.NoError(t, s.Upsert(ctx, []Record{
		{ID: "d1#summary", DocumentID: "d1", Text: "oauth", Vector: []float64{1, 0}},
	}))

	r, err := s.Get(ctx, "d1#summary")
	require.NoError(t, err)
	assert.Equal(t, "oauth", r.Text)

	require.NoError(t, s.Upsert(ctx, []Record{
		{ID: "d1#summary", DocumentID: "d1", Text: "oauth login", Vector: []float64{0, 1}},
	}))
	r, err = s.Get(ctx, "d1#summary")
	require.NoError(t, err)
	assert.Equal(t, "oauth login", r.Text)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, StoreStats{Records: 1, Documents: 1, Dimension: 2}, stats)

	_, err = s.Get(ctx, "missing")
	assert.True(t, types.IsErrorCode(err, types.ErrNotFound))
}

func TestInMemoryVectorStore_RejectsBadRecords(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryVectorStore(3, nil)

	tests := []struct {
		name   string
		record Record
	}{
		{"no id", Record{Vector: []float64{1, 0, 0}}},
		{"no vector", Record{ID: "a"}},
		{"wrong dimension", Record{ID: "a", Vector: []float64{1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Upsert(ctx, []Record{tt.record})
			assert.True(t, types.IsErrorCode(err, types.ErrIndex))
		})
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Records, "a rejected batch writes nothing")
}

func TestInMemoryVectorStore_Search(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryVectorStore(2, nil)
	require.NoError(t, s.Upsert(ctx, []Record{
		{ID: "a", DocumentID: "d1", Vector: []float64{1, 0}},
		{ID: "b", DocumentID: "d1", Vector: []float64{0.7, 0.7}},
		{ID: "c", DocumentID: "d2", Vector: []float64{0, 1}},
	}))

	results, err := s.Search(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Record.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-9)
	assert.Equal(t, "b", results[1].Record.ID)

	results, err = s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = s.Search(ctx, []float64{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryVectorStore_DeleteAndClose(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryVectorStore(1, nil)
	require.NoError(t, s.Upsert(ctx, []Record{
		{ID: "a", DocumentID: "d1", Vector: []float64{1}},
		{ID: "b", DocumentID: "d2", Vector: []float64{1}},
	}))

	require.NoError(t, s.Delete(ctx, []string{"a", "zzz"}))
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 1, stats.Documents)

	results, err := s.Search(ctx, []float64{1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Record.ID)

	assert.True(t, s.IsAvailable(ctx))
	require.NoError(t, s.Close())
	assert.False(t, s.IsAvailable(ctx))
	assert.Error(t, s.Upsert(ctx, []Record{{ID: "c", Vector: []float64{1}}}))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{2, 0}, []float64{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float64{1}, []float64{1, 0}))
	assert.Zero(t, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}
