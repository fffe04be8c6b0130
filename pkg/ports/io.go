package ports

import "context"

// MessageSink is the output boundary of the engine.
type MessageSink interface {
	// Emit delivers the agent message of one iteration. It is called exactly
	// once per iteration, even for empty messages.
	Emit(ctx context.Context, message string) error

	// Notice delivers an out-of-band system notice, such as a rejected transition.
	Notice(ctx context.Context, notice string) error
}

// InputSource is the input boundary of the engine.
type InputSource interface {
	// ReadLine blocks until the user supplies a line of input.
	// It returns io.EOF when the input is exhausted.
	ReadLine(ctx context.Context) (string, error)
}
