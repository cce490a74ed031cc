package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/wubba/internal/adapter"
	"github.com/mmcdole/wubba/internal/adapter/source/rickmorty"
	"github.com/mmcdole/wubba/internal/domain"
)

// NewClient creates an EpisodeSource for the API rooted at cfg.BaseURL.
func NewClient(cfg *adapter.APIConfig, logger *slog.Logger) (domain.EpisodeSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("api config is nil")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}

	return rickmorty.NewClient(cfg.BaseURL, rickmorty.Options{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Attempts:  cfg.Attempts,
	}, logger), nil
}

// NewClientFromConfig creates an EpisodeSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (domain.EpisodeSource, error) {
	return NewClient(&cfg.API, logger)
}
