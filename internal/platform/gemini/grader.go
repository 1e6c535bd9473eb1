package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/grading"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the subset of the genai Models service the grader uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGrader implements the grading.Grader interface using
// Google's Gemini API.
type GeminiGrader struct {
	logger  *slog.Logger
	models  contentGenerator
	model   string
	retry   grading.RetryPolicy
	timeout time.Duration
}

// NewGeminiGrader creates a GeminiGrader from the LLM configuration.
func NewGeminiGrader(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGrader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", grading.ErrInvalidConfig)
	}

	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", grading.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", grading.ErrInvalidConfig, err)
	}

	return newGeminiGrader(logger, client.Models, cfg), nil
}

func newGeminiGrader(logger *slog.Logger, models contentGenerator, cfg config.LLMConfig) *GeminiGrader {
	return &GeminiGrader{
		logger: logger.With(slog.String("component", "gemini_grader")),
		models: models,
		model:  cfg.GeminiModel,
		retry: grading.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Grade implements grading.Grader.
func (g *GeminiGrader) Grade(ctx context.Context, req grading.Request) (*domain.Feedback, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := grading.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "requesting grade from Gemini",
		slog.String("model", g.model),
		slog.Int("prompt_length", len(prompt)))

	fb, err := g.retry.Do(ctx, log, func(ctx context.Context) (*domain.Feedback, error) {
		return g.call(ctx, prompt)
	})
	if err != nil {
		log.ErrorContext(ctx, "Gemini grading failed", slog.String("error", err.Error()))
		return nil, err
	}

	return fb, nil
}

func (g *GeminiGrader) call(ctx context.Context, prompt string) (*domain.Feedback, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", grading.ErrInvalidResponse)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", grading.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", grading.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: content blocked by safety filters", grading.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", grading.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	return grading.ParseFeedback(text.String())
}

// classifyError maps a transport or API error onto the grading taxonomy.
// Rate limits, server errors and unrecognised failures are transient;
// other API client errors are permanent.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: gemini API error %d: %v", grading.ErrTransientFailure, apiErr.Code, err)
		}
		return fmt.Errorf("%w: gemini API error %d: %v", grading.ErrGradingFailed, apiErr.Code, err)
	}

	return fmt.Errorf("%w: %v", grading.ErrTransientFailure, err)
}

var _ grading.Grader = (*GeminiGrader)(nil)
