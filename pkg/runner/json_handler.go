package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
)

// Event types written by JSONHandler.
const (
	EventMessage      = "message"
	EventNotice       = "notice"
	EventInputRequest = "input_request"
)

// Event is one line of JSONHandler output.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// JSONHandler implements IOHandler for newline-delimited JSON.
//
// Input lines may be a JSON string, an object with an "input" field, or plain
// text.
type JSONHandler struct {
	MaxInput int

	mu      sync.Mutex
	encoder *json.Encoder
	lines   *lineReader
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONHandler{
		encoder: enc,
		lines:   newLineReader(r),
	}
}

func (h *JSONHandler) write(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(ev)
}

// Emit writes a message event.
func (h *JSONHandler) Emit(ctx context.Context, message string) error {
	return h.write(Event{Type: EventMessage, Content: message})
}

// Notice writes a notice event.
func (h *JSONHandler) Notice(ctx context.Context, notice string) error {
	return h.write(Event{Type: EventNotice, Content: notice})
}

// Close stops the background line reader.
func (h *JSONHandler) Close() error {
	h.lines.close()
	return nil
}

// ReadLine announces an input request and reads one line. Blank lines are
// skipped.
func (h *JSONHandler) ReadLine(ctx context.Context) (string, error) {
	if err := h.write(Event{Type: EventInputRequest}); err != nil {
		return "", err
	}
	for {
		text, err := h.lines.next(ctx)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		return SanitizeInput(decodeInput(text), h.MaxInput)
	}
}

func decodeInput(text string) string {
	var s string
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return s
	}
	var obj struct {
		Input *string `json:"input"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.Input != nil {
		return *obj.Input
	}
	// Fallback: plain text
	return text
}
