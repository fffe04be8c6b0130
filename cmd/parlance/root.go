package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parlance",
	Short: "Parlance runs LLM-driven conversational state machines",
	Long: `Parlance loads an agent definition (a table of states, prompts and allowed
transitions) and lets a language model drive the conversation through it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "agent_config.toml", "Agent definition file (TOML, YAML or JSON)")
}
