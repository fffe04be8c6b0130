package main

import (
	"os"
	"time"

	"github.com/aretw0/parlance/internal/cli"
	"github.com/aretw0/parlance/pkg/adapters/process"
	"github.com/spf13/cobra"
)

var runOpts cli.RunOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a conversation with the agent",
	Long: `Starts the agent in the configured initial state and converses on stdin/stdout
until a terminal state is reached or input is closed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		return cli.RunSession(opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()

	f.StringVar(&runOpts.Provider, "provider", cli.ProviderOpenRouter, "Model provider: openrouter, gemini or script")
	f.StringVar(&runOpts.ScriptPath, "script", "", "Replies file for the script provider (JSON array or NDJSON)")
	f.StringVar(&runOpts.Model, "model", "", "Force a model for every state (gemini provider)")
	f.StringVar(&runOpts.BaseURL, "base-url", "", "OpenAI-compatible chat completions URL")
	f.StringVarP(&runOpts.InitialInput, "input", "i", "Hello, I need some help.", "First user message")
	f.StringVar(&runOpts.SessionID, "session-id", "", "Session to create or resume")

	f.BoolVar(&runOpts.Dev, "dev", false, "Verbose diagnostics on stderr")
	f.StringVar(&runOpts.LogDir, "log-dir", "logs", "Directory for audit logs")
	f.BoolVar(&runOpts.NoAudit, "no-audit", false, "Do not write an audit log")
	f.BoolVar(&runOpts.JSON, "json", false, "NDJSON input/output")
	f.StringVar(&runOpts.Render, "render", "auto", "Markdown rendering: auto, always or never")

	f.StringVar(&runOpts.MetricsAddr, "metrics-addr", "", "Serve /metrics and the session API on this address")
	f.StringVar(&runOpts.RedisAddr, "redis-addr", "", "Persist sessions in Redis at this address")
	f.StringVar(&runOpts.RedisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	f.IntVar(&runOpts.RedisDB, "redis-db", 0, "Redis database")
	f.StringVar(&runOpts.StoreDir, "store-dir", "", "Persist sessions as JSON files in this directory")
	f.StringVar(&runOpts.EncryptKey, "encrypt-key", os.Getenv("PARLANCE_ENCRYPTION_KEY"), "Encrypt stored sessions with this 32-byte key (hex or base64)")
	f.BoolVar(&runOpts.Redact, "redact", false, "Mask emails, card and phone numbers in stored sessions")

	f.DurationVar(&runOpts.ActionTimeout, "action-timeout", 0, "Bound every action call (0 disables)")
	f.DurationVar(&runOpts.ModelTimeout, "model-timeout", 0, "Bound every model call (0 disables)")
	f.DurationVar(&runOpts.RequestTimeout, "request-timeout", 120*time.Second, "Bound each HTTP request to the openrouter provider (0 keeps the client default)")
	f.IntVar(&runOpts.MaxIterations, "max-iterations", 0, "Stop after this many iterations (0 disables)")
	f.StringVar(&runOpts.SearchURL, "search-url", os.Getenv("SEARXNG_URL"), "SearXNG /search endpoint for the search action")
	f.StringVar(&runOpts.ToolsPath, "tools", process.DefaultToolsFile, "Commands exposed as actions (YAML or JSON); a missing file is ignored")
	f.StringVar(&runOpts.ToolsDir, "tools-dir", "", "Working directory of tool commands (default: current directory)")
	f.BoolVar(&runOpts.Strict, "strict", false, "Refuse to run a configuration that does not validate")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(f)
}
