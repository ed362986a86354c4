package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-smart-forward/internal/adapters/cache"
	"github.com/mikey/llm-smart-forward/internal/config"
	"github.com/mikey/llm-smart-forward/internal/core"
	"github.com/mikey/llm-smart-forward/internal/factory"
	"github.com/mikey/llm-smart-forward/internal/logging"
	"github.com/mikey/llm-smart-forward/internal/ports"
	"github.com/mikey/llm-smart-forward/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register cache repository; nil when caching is disabled
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		if !f.IsCacheEnabled() {
			return nil, nil
		}
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register text generator, wrapped with the cache middleware when a
	// cache repository is available
	if err := container.Provide(func(f *factory.LLMFactory, cf *factory.CacheFactory, repo core.CacheRepository, logger *zap.Logger) (core.TextGenerator, error) {
		generator, err := f.CreateTextGenerator()
		if err != nil {
			return nil, err
		}
		if repo == nil {
			return generator, nil
		}
		ttl, err := cf.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return cache.NewCachingGenerator(generator, repo, ttl, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register pipeline components
	if err := container.Provide(core.NewKeywordExtractor); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewSummarizationPipeline); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewRuleMatcher); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewForwardingResolver); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewForwardingService); err != nil {
		return nil, err
	}

	// Register message intake
	if err := container.Provide(func(f *factory.IntakeFactory) (ports.MessageIntake, error) {
		return f.CreateMessageIntake()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
