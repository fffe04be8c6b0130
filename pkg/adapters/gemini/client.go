// Package gemini implements model.Client on top of the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/model"
	"google.golang.org/genai"
)

// DefaultModel is used when the state's model is not a Gemini model.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when no candidate carries text.
var ErrEmptyResponse = errors.New("gemini: response has no content")

// Generator is the subset of *genai.Models used by the client.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls GenerateContent and returns the first candidate's text.
type Client struct {
	gen      Generator
	model    string
	fallback string
}

// Option configures a Client.
type Option func(*Client)

// WithModel forces every request onto name, ignoring the state's model.
func WithModel(name string) Option {
	return func(c *Client) {
		c.model = name
	}
}

// WithDefaultModel sets the model used for states naming a non-Gemini model.
func WithDefaultModel(name string) Option {
	return func(c *Client) {
		c.fallback = name
	}
}

// New creates a client backed by the Gemini API. If apiKey is empty the SDK
// reads GEMINI_API_KEY or GOOGLE_API_KEY.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return NewFromGenerator(cli.Models, opts...), nil
}

// NewFromGenerator wraps an existing generator.
func NewFromGenerator(gen Generator, opts ...Option) *Client {
	c := &Client{gen: gen, fallback: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete implements model.Client.
func (c *Client) Complete(ctx context.Context, req model.Request) (string, error) {
	contents, cfg := Convert(req)
	resp, err := c.gen.GenerateContent(ctx, c.resolveModel(req.Model), contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := firstText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) resolveModel(requested string) string {
	if c.model != "" {
		return c.model
	}
	if strings.HasPrefix(requested, "gemini") {
		return requested
	}
	return c.fallback
}

// Convert maps a chat request onto Gemini contents and generation config.
// Leading system messages become the system instruction; later system
// messages are sent as user turns, since Gemini only knows user and model.
// A request made only of system messages sends the last one as the user turn,
// because Gemini rejects empty contents.
func Convert(req model.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}

	var system []*genai.Part
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == domain.RoleSystem && len(contents) == 0 {
			system = append(system, &genai.Part{Text: m.Content})
			continue
		}
		role := string(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = string(genai.RoleModel)
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	if len(contents) == 0 && len(system) > 0 {
		last := system[len(system)-1]
		system = system[:len(system)-1]
		contents = append(contents, &genai.Content{
			Role:  string(genai.RoleUser),
			Parts: []*genai.Part{last},
		})
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: system}
	}
	return contents, cfg
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
