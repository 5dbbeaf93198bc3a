package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/hyperjump/testgen/internal/config"
)

// NewCompleter builds the completer selected by cfg.Provider. On success the returned
// closer is non-nil and releases provider resources.
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (Completer, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c := NewChatClient(ChatOptions{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.TemperatureOrDefault(),
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		return c, nopCloser{}, nil
	case config.ProviderGemini:
		g, err := NewGeminiClient(ctx, GeminiOptions{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.TemperatureOrDefault(),
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
