package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hllmod/reportbot/internal/setup/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const requestTimeout = 30 * time.Second

// AIClient wraps an OpenAI-compatible endpoint with a concurrency cap and a circuit breaker.
type AIClient struct {
	client    *openai.Client
	breaker   *gobreaker.CircuitBreaker
	semaphore *semaphore.Weighted
	model     string
	logger    *zap.Logger
}

// NewClient creates a new AIClient.
func NewClient(cfg *config.AI, logger *zap.Logger) *AIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(requestTimeout),
		option.WithMaxRetries(0),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)
	logger = logger.Named("ai_client")

	return &AIClient{
		client:    &client,
		breaker:   gobreaker.NewCircuitBreaker(breakerSettings(logger)),
		semaphore: semaphore.NewWeighted(max(cfg.MaxConcurrent, 1)),
		model:     cfg.Model,
		logger:    logger,
	}
}

// breakerSettings trips after a majority of at least 10 requests fail and
// probes again after a minute.
func breakerSettings(logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Refusals are answers, not outages.
			return err == nil || errors.Is(err, ErrContentBlocked)
		},
	}
}

// Model returns the configured model identifier.
func (c *AIClient) Model() string {
	return c.model
}

// Chat returns a ChatCompletions implementation.
func (c *AIClient) Chat() ChatCompletions {
	return &chatCompletions{client: c}
}

// chatCompletions implements the ChatCompletions interface.
type chatCompletions struct {
	client *AIClient
}

// New makes a single chat completion request. No retries are attempted.
func (c *chatCompletions) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	if params.Model == "" {
		params.Model = c.client.model
	}

	if err := c.client.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.client.semaphore.Release(1)

	result, err := c.client.breaker.Execute(func() (any, error) {
		resp, err := c.client.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, err
		}

		if err := checkFinishReason(resp); err != nil {
			return nil, err
		}

		return resp, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		case errors.Is(err, ErrContentBlocked):
			c.client.logger.Warn("Content blocked", zap.String("model", params.Model), zap.Error(err))
			return nil, err
		default:
			c.client.logger.Warn("Failed to make request", zap.String("model", params.Model), zap.Error(err))
			return nil, err
		}
	}

	return result.(*openai.ChatCompletion), nil
}

// checkFinishReason rejects empty or filtered completions.
func checkFinishReason(resp *openai.ChatCompletion) error {
	if resp == nil {
		return fmt.Errorf("%w: received nil response", ErrContentBlocked)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: received empty choices", ErrContentBlocked)
	}

	reason := resp.Choices[0].FinishReason
	err, known := finishReasons[reason]
	if !known {
		return fmt.Errorf("%w: finish reason %q", ErrContentBlocked, reason)
	}

	if err != nil {
		return fmt.Errorf("%w: finish reason %q", err, reason)
	}

	return nil
}
