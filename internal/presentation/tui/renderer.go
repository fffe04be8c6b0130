// Package tui renders agent output for interactive terminals.
package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// RendererOption configures the markdown renderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	style    string
	wordWrap int
}

// WithStyle selects a glamour standard style ("dark", "light", "notty", ...).
// The default detects the terminal background.
func WithStyle(style string) RendererOption {
	return func(c *rendererConfig) {
		c.style = style
	}
}

// WithWordWrap sets the wrap width. Zero keeps glamour's default.
func WithWordWrap(width int) RendererOption {
	return func(c *rendererConfig) {
		c.wordWrap = width
	}
}

// NewRenderer returns a function that renders agent messages as markdown.
func NewRenderer(opts ...RendererOption) (func(string) (string, error), error) {
	var cfg rendererConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	gopts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if cfg.style != "" {
		gopts = []glamour.TermRendererOption{glamour.WithStandardStyle(cfg.style)}
	}
	if cfg.wordWrap > 0 {
		gopts = append(gopts, glamour.WithWordWrap(cfg.wordWrap))
	}

	r, err := glamour.NewTermRenderer(gopts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render, nil
}
