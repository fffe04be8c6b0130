package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/parlance/internal/logging"
	"github.com/aretw0/parlance/pkg/domain"
)

// Invoker turns an Input into a Decision by calling a Client.
type Invoker struct {
	client    Client
	maxTokens int
	timeout   time.Duration
	logger    *slog.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithMaxTokens sets the completion budget sent with every request.
func WithMaxTokens(n int) InvokerOption {
	return func(i *Invoker) {
		if n > 0 {
			i.maxTokens = n
		}
	}
}

// WithTimeout bounds each model call. Zero disables the deadline.
func WithTimeout(d time.Duration) InvokerOption {
	return func(i *Invoker) {
		i.timeout = d
	}
}

// WithLogger sets the logger used for failed invocations.
func WithLogger(l *slog.Logger) InvokerOption {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInvoker creates an Invoker backed by client.
func NewInvoker(client Client, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		client:    client,
		maxTokens: domain.DefaultMaxTokens,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Outcome is the result of one Invoke call.
type Outcome struct {
	Decision     domain.Decision
	SystemPrompt string
	Messages     []Message
	Raw          string
	Duration     time.Duration
	// Err is a *domain.ModelInvocationError when Decision is the fallback.
	Err error
}

// Fallback reports whether the outcome carries the fallback decision.
func (o Outcome) Fallback() bool { return o.Err != nil }

// Request builds the request Invoke would send for in.
func (i *Invoker) Request(in Input) Request {
	system := SystemPrompt(in)
	return Request{
		Model:       in.Spec.Model,
		Temperature: in.Spec.Temperature,
		MaxTokens:   i.maxTokens,
		Messages:    Messages(system, in.Transcript),
		JSONMode:    true,
	}
}

// Invoke calls the model once. It never fails: on any error the outcome
// holds domain.FallbackDecision and Err describes what went wrong.
func (i *Invoker) Invoke(ctx context.Context, in Input) Outcome {
	req := i.Request(in)
	out := Outcome{
		SystemPrompt: req.Messages[0].Content,
		Messages:     req.Messages,
	}

	callCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := i.complete(callCtx, req)
	out.Duration = time.Since(start)
	out.Raw = raw

	if err == nil {
		out.Decision, err = ParseDecision(raw)
	}
	if err != nil {
		out.Err = &domain.ModelInvocationError{Model: req.Model, Raw: raw, Err: err}
		out.Decision = domain.FallbackDecision()
		i.logger.Warn("model invocation failed, using fallback decision",
			"state", in.StateID,
			"model", req.Model,
			"error", err)
	}
	return out
}

func (i *Invoker) complete(ctx context.Context, req Request) (raw string, err error) {
	if i.client == nil {
		return "", errors.New("no model client configured")
	}
	defer func() {
		if r := recover(); r != nil {
			raw, err = "", fmt.Errorf("model client panicked: %v", r)
		}
	}()
	return i.client.Complete(ctx, req)
}
