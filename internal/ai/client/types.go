package client

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
)

var (
	// ErrContentBlocked is returned when the provider refuses or filters a completion.
	ErrContentBlocked = errors.New("content blocked")
	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("language model circuit breaker is open")
)

// ChatCompletions provides chat completion requests.
type ChatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// finishReasons maps provider finish reasons to their outcome. Unknown reasons count as blocked.
var finishReasons = map[string]error{
	"stop":           nil,
	"length":         nil,
	"content_filter": ErrContentBlocked,
}
