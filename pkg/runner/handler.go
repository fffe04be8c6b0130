package runner

import (
	"github.com/aretw0/parlance/pkg/ports"
)

// IOHandler is both ends of the conversation boundary.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	ports.MessageSink
	ports.InputSource
}

// ContentRenderer transforms an agent message before it is written, e.g. to
// render markdown for a terminal.
type ContentRenderer func(string) (string, error)

// NoticeStyler decorates system notices.
type NoticeStyler func(string) string

var (
	_ IOHandler = (*TextHandler)(nil)
	_ IOHandler = (*JSONHandler)(nil)
)
