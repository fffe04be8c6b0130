package domain

// Reserved state identifiers.
const (
	// ErrorState is the state the engine falls back to after a rejected
	// transition or a failed model invocation. Configurations are expected to
	// define it with a recovery prompt.
	ErrorState = "error"

	// DefaultInitialState is used when the configuration omits initial_state.
	DefaultInitialState = "start"
)

// DefaultTerminalStates are the sentinel next-state values that end a run.
// The empty string is always terminal and does not need to be listed.
var DefaultTerminalStates = []string{"exit", "end"}

// Model defaults applied to states that omit them.
const (
	DefaultTemperature = 0.7
	DefaultModel       = "llama3-70b-8192"
	DefaultMaxTokens   = 5000
)

// DefaultSideChannelAction is the action whose results feed the side channel.
const DefaultSideChannelAction = "search"

// ActionError is the action name carried by the fallback decision.
// It is never dispatched unless a host registers an action under that name.
const ActionError = "error"

// FallbackMessage is shown to the user when the model response is unusable.
const FallbackMessage = "I apologize, but I encountered an error processing your request."

// ActionResultPrefix labels action results injected into the primary transcript.
const ActionResultPrefix = "Action result: "
