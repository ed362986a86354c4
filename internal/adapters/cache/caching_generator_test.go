package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingGenerator struct {
	response string
	err      error
	calls    int
}

func (g *countingGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.response, g.err
}

func TestCachingGenerator_ServesRepeatsFromCache(t *testing.T) {
	repo := newTestCache(t, 10)
	inner := &countingGenerator{response: "generated text"}
	g := NewCachingGenerator(inner, repo, time.Hour, zap.NewNop())
	ctx := context.Background()

	first, err := g.Generate(ctx, "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "generated text", first)
	assert.Equal(t, 1, inner.calls)

	second, err := g.Generate(ctx, "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "generated text", second)
	assert.Equal(t, 1, inner.calls, "repeat prompt must not reach the inner generator")
}

func TestCachingGenerator_DistinctPromptsMiss(t *testing.T) {
	repo := newTestCache(t, 10)
	inner := &countingGenerator{response: "generated text"}
	g := NewCachingGenerator(inner, repo, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := g.Generate(ctx, "prompt one")
	require.NoError(t, err)
	_, err = g.Generate(ctx, "prompt two")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachingGenerator_FailuresNotCached(t *testing.T) {
	repo := newTestCache(t, 10)
	inner := &countingGenerator{err: errors.New("backend down")}
	g := NewCachingGenerator(inner, repo, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := g.Generate(ctx, "prompt")
	require.Error(t, err)

	inner.err = nil
	inner.response = "recovered"
	got, err := g.Generate(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 1, repo.Len(), "successful response should now be cached")
}

func TestPromptKeyStable(t *testing.T) {
	assert.Equal(t, promptKey("same prompt"), promptKey("same prompt"))
	assert.NotEqual(t, promptKey("prompt a"), promptKey("prompt b"))
	assert.Len(t, promptKey("anything"), 64)
}
