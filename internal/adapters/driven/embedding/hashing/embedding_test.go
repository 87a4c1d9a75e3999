package hashing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	a, err := svc.Embed(context.Background(), "Restart pump three")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "restart PUMP three")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)
}

func TestEmbed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 64})
	v, err := svc.Embed(context.Background(), "alpha beta gamma")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, domain.CosineSimilarity(v, v), 1e-6)
}

func TestEmbed_EmptyTextIsZero(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 8})
	v, err := svc.Embed(context.Background(), " ... ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), v)
}

func TestEmbed_SharedVocabularyRanksHigher(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	query, _ := svc.Embed(ctx, "what is the alpha procedure")
	alpha, _ := svc.Embed(ctx, "The Alpha procedure requires step one")
	beta, _ := svc.Embed(ctx, "Beta calibration needs a torque wrench")

	assert.Greater(t, domain.CosineSimilarity(query, alpha), domain.CosineSimilarity(query, beta))
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 16})
	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
}

func TestEmbed_Cancelled(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}
