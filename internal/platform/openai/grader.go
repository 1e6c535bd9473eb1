package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/grading"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"resty.dev/v3"
)

const systemPrompt = "You grade flashcard answers. Reply with a single JSON object and nothing else."

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Grader implements grading.Grader using the chat-completions API.
type Grader struct {
	httpClient *resty.Client
	model      string
	retry      grading.RetryPolicy
	logger     *slog.Logger
}

// NewGrader creates a Grader from the LLM configuration.
func NewGrader(logger *slog.Logger, cfg config.LLMConfig) (*Grader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", grading.ErrInvalidConfig)
	}
	if cfg.OpenAIModel == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", grading.ErrInvalidConfig)
	}

	baseURL := cfg.OpenAIBaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+cfg.OpenAIAPIKey)
	client.SetHeader("Content-Type", "application/json")
	if cfg.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}

	return &Grader{
		httpClient: client,
		model:      cfg.OpenAIModel,
		retry: grading.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
		logger: logger.With(slog.String("component", "openai_grader")),
	}, nil
}

// Close releases the underlying HTTP client.
func (g *Grader) Close() error {
	return g.httpClient.Close()
}

// Grade implements grading.Grader.
func (g *Grader) Grade(ctx context.Context, req grading.Request) (*domain.Feedback, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := grading.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	body := chatCompletionRequest{
		Model: g.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	fb, err := g.retry.Do(ctx, log, func(ctx context.Context) (*domain.Feedback, error) {
		return g.call(ctx, body)
	})
	if err != nil {
		log.ErrorContext(ctx, "OpenAI grading failed", slog.String("error", err.Error()))
		return nil, err
	}
	return fb, nil
}

func (g *Grader) call(ctx context.Context, body chatCompletionRequest) (*domain.Feedback, error) {
	response, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&chatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", grading.ErrTransientFailure, err)
	}

	if response.IsError() {
		status := response.StatusCode()
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: response error %d", grading.ErrTransientFailure, status)
		}
		return nil, fmt.Errorf("%w: response error %d: %s", grading.ErrGradingFailed, status, response.String())
	}

	result, ok := response.Result().(*chatCompletionResponse)
	if !ok || result == nil || len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response body or choices", grading.ErrInvalidResponse)
	}

	c := result.Choices[0]
	if c.FinishReason == "content_filter" {
		return nil, fmt.Errorf("%w: content filtered", grading.ErrContentBlocked)
	}

	return grading.ParseFeedback(c.Message.Content)
}

var _ grading.Grader = (*Grader)(nil)
