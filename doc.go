/*
Package parlance runs conversational agents whose flow is a declarative state
table and whose every turn is decided by a language model.

Each state names a prompt, a model and the states it may move to. On every
iteration the agent asks the model for a structured decision (a message for the
user, an optional action, the next state and whether to wait for input),
dispatches the action, validates the transition against the table and either
halts, waits for the user or loops.

# Usage

	client := openrouter.New("")
	agent, err := parlance.New("agent_config.toml", client,
		parlance.WithAuditDir("logs"),
	)
	if err != nil {
		log.Fatal(err)
	}
	agent.RegisterAction("calculate", actions.NewCalculator())

	outcome, err := agent.Run(ctx, "Hello, I need some help.")

The model provider is any model.Client; the repository ships OpenRouter,
Gemini and scripted clients under pkg/adapters. Input and output go through a
runner.IOHandler, text on the terminal by default.
*/
package parlance
