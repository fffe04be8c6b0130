package main

import (
	"os"

	"github.com/aretw0/parlance/internal/cli"
	"github.com/aretw0/parlance/pkg/adapters/process"
	"github.com/spf13/cobra"
)

var mcpOpts cli.RunOptions

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serves the registered actions, the stored sessions and the state table
over MCP on stdin/stdout, so other agents can call them as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := mcpOpts
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		return cli.ServeMCP(opts)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	f := mcpCmd.Flags()

	f.BoolVar(&mcpOpts.Dev, "dev", false, "Verbose diagnostics on stderr")
	f.StringVar(&mcpOpts.SearchURL, "search-url", os.Getenv("SEARXNG_URL"), "SearXNG /search endpoint for the search action")
	f.StringVar(&mcpOpts.ToolsPath, "tools", process.DefaultToolsFile, "Commands exposed as actions (YAML or JSON); a missing file is ignored")
	f.StringVar(&mcpOpts.ToolsDir, "tools-dir", "", "Working directory of tool commands (default: current directory)")
	f.DurationVar(&mcpOpts.ActionTimeout, "action-timeout", 0, "Bound every action call (0 disables)")
	f.StringVar(&mcpOpts.RedisAddr, "redis-addr", "", "Read sessions from Redis at this address")
	f.StringVar(&mcpOpts.RedisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	f.IntVar(&mcpOpts.RedisDB, "redis-db", 0, "Redis database")
	f.StringVar(&mcpOpts.StoreDir, "store-dir", "", "Read sessions from JSON files in this directory")
	f.StringVar(&mcpOpts.EncryptKey, "encrypt-key", os.Getenv("PARLANCE_ENCRYPTION_KEY"), "Key the sessions were encrypted with (hex or base64)")
}
