package cli

import "time"

// Model providers accepted by RunOptions.Provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderScript     = "script"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	ConfigPath   string
	InitialInput string
	SessionID    string

	Provider   string
	ScriptPath string
	Model      string
	BaseURL    string

	Dev     bool
	LogDir  string
	NoAudit bool
	JSON    bool
	// Render selects markdown rendering: "auto" renders only on a terminal.
	Render string

	MetricsAddr   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// StoreDir persists sessions as JSON files when Redis is not used.
	StoreDir string
	// EncryptKey is a 32-byte AES key, hex or base64 encoded.
	EncryptKey string
	Redact     bool

	ActionTimeout time.Duration
	ModelTimeout  time.Duration
	// RequestTimeout bounds each HTTP attempt of the openrouter provider.
	RequestTimeout time.Duration
	MaxIterations  int
	SearchURL      string
	ToolsPath      string
	// ToolsDir is the working directory of tool commands.
	ToolsDir string
	Strict   bool
}
