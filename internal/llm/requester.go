// Package llm sends composed prompts to a chat completion service.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Completer sends one prompt to a model and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ServiceError reports a failed completion request.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Requester builds prompts and performs exactly one completion call per request.
type Requester struct {
	completer Completer
	provider  string
	logger    *zap.Logger
}

// RequesterOption configures a Requester.
type RequesterOption func(*Requester)

// WithRequesterLogger sets the logger for the requester.
func WithRequesterLogger(logger *zap.Logger) RequesterOption {
	return func(r *Requester) {
		r.logger = logger
	}
}

// NewRequester returns a Requester over completer. provider names the backend in errors.
func NewRequester(completer Completer, provider string, opts ...RequesterOption) *Requester {
	r := &Requester{completer: completer, provider: provider, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestCompletion sends the prompt for instruction and context and returns the trimmed reply.
// Every failure is returned as *ServiceError. There is no retry.
func (r *Requester) RequestCompletion(ctx context.Context, instruction, docContext string) (string, error) {
	prompt := BuildPrompt(instruction, docContext)
	start := time.Now()
	reply, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		r.logger.Warn("completion failed",
			zap.String("provider", r.provider),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", &ServiceError{Provider: r.provider, Err: err}
	}
	reply = strings.TrimSpace(reply)
	r.logger.Debug("completion received",
		zap.String("provider", r.provider),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("reply_chars", len(reply)),
		zap.Duration("elapsed", time.Since(start)))
	return reply, nil
}
