/*
Package runner implements the terminal and headless I/O boundaries of an agent.

Both handlers satisfy ports.MessageSink and ports.InputSource, so a single value
can be handed to the engine for output and input.

# Key Components

  - TextHandler: interactive CLI usage. Prints "Agent: <message>" and prompts "You: ".
  - JSONHandler: newline-delimited JSON for embedding the agent in another process.
  - SanitizeInput: size limit, UTF-8 validation and control-character stripping.

# Usage

	h := runner.NewTextHandler(os.Stdin, os.Stdout)
	engine := runtime.NewEngine(cfg, invoker, runtime.WithSink(h), runtime.WithInput(h))
*/
package runner
