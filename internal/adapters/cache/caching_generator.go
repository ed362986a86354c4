package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/mikey/llm-smart-forward/internal/core"
	"go.uber.org/zap"
)

// CachingGenerator wraps a TextGenerator with a response cache. It is
// optional middleware: the summarization pipeline neither knows nor cares
// whether its generator is cached. Only successful responses are stored,
// keyed by SHA-256 of the prompt, so a hit can never replay a rejected or
// failed generation.
type CachingGenerator struct {
	inner  core.TextGenerator
	repo   core.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingGenerator creates a new caching generator wrapper
func NewCachingGenerator(inner core.TextGenerator, repo core.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachingGenerator {
	return &CachingGenerator{
		inner:  inner,
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// Generate produces text for the given prompt, serving repeats from cache.
func (g *CachingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)

	if entry, err := g.repo.Get(ctx, key); err == nil {
		g.logger.Debug("Generation cache hit", zap.String("key", key[:12]))
		return entry.Response, nil
	}

	response, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	now := time.Now()
	entry := &core.CacheEntry{
		Key:       key,
		Response:  response,
		LastSeen:  now,
		ExpiresAt: now.Add(g.ttl),
	}
	if err := g.repo.Set(ctx, entry); err != nil {
		// Cache write failures are a latency concern, not a request failure
		g.logger.Error("Failed to update generation cache", zap.Error(err))
	}

	return response, nil
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
