package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/grading"
	"github.com/phrazzld/scry-quest/internal/platform/gemini"
	"github.com/phrazzld/scry-quest/internal/platform/openai"
)

// newGrader builds the configured grading oracle behind a rate limiter. The
// returned closer is nil when the provider holds nothing to release.
func newGrader(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (grading.Grader, io.Closer, error) {
	var (
		grader grading.Grader
		closer io.Closer
	)

	switch cfg.Provider {
	case "gemini":
		g, err := gemini.NewGeminiGrader(ctx, log, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize gemini grader: %w", err)
		}
		grader = g
	case "openai":
		g, err := openai.NewGrader(log, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize openai grader: %w", err)
		}
		grader, closer = g, g
	default:
		return nil, nil, fmt.Errorf("%w: unknown provider %q", grading.ErrInvalidConfig, cfg.Provider)
	}

	log.Info("grader initialized",
		slog.String("provider", cfg.Provider),
		slog.Float64("requests_per_second", cfg.RequestsPerSecond),
		slog.Int("burst", cfg.Burst))

	return grading.NewRateLimited(grader, cfg.RequestsPerSecond, cfg.Burst), closer, nil
}
