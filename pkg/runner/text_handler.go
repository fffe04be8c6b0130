package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// AgentPrefix marks agent-originated output lines.
	AgentPrefix = "Agent: "
	// InputPrompt is written before every read.
	InputPrompt = "You: "
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
	Styler   NoticeStyler
	MaxInput int

	lines *lineReader
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerStyler configures how notices are decorated.
func WithTextHandlerStyler(styler NoticeStyler) TextHandlerOption {
	return func(h *TextHandler) {
		h.Styler = styler
	}
}

// WithTextHandlerMaxInput overrides the input size limit.
func WithTextHandlerMaxInput(n int) TextHandlerOption {
	return func(h *TextHandler) {
		h.MaxInput = n
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer: w,
		lines:  newLineReader(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Emit prints the agent message, rendered when a renderer is configured.
func (h *TextHandler) Emit(ctx context.Context, message string) error {
	output := message
	if h.Renderer != nil {
		if rendered, err := h.Renderer(message); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, AgentPrefix+strings.TrimSpace(output))
	return err
}

// Notice prints a system notice on its own line.
func (h *TextHandler) Notice(ctx context.Context, notice string) error {
	if h.Styler != nil {
		notice = h.Styler(notice)
	}
	_, err := fmt.Fprintln(h.Writer, notice)
	return err
}

// Close stops the background line reader. Later reads return io.EOF.
func (h *TextHandler) Close() error {
	h.lines.close()
	return nil
}

// ReadLine prompts and reads one sanitized line. Rejected input is reported
// and the prompt repeated.
func (h *TextHandler) ReadLine(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(h.Writer, InputPrompt)

		text, err := h.lines.next(ctx)
		if err != nil {
			return "", err
		}

		clean, err := SanitizeInput(text, h.MaxInput)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}
