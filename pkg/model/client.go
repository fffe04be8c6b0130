// Package model builds prompts, calls a model through an abstract Client and
// turns the structured response into a domain.Decision.
//
// The Invoker never fails: any transport or parse problem is converted into
// domain.FallbackDecision so the engine always receives a well-formed decision.
package model

import (
	"context"

	"github.com/aretw0/parlance/pkg/domain"
)

// Message is one chat message sent to the model.
type Message struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// Request is a single model call.
type Request struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Messages    []Message `json:"messages"`
	// JSONMode asks the provider for a machine-parsable JSON object.
	JSONMode bool `json:"json_mode"`
}

// Client is the model-invocation capability consumed by the invoker.
// Complete returns the raw text of the model's reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
