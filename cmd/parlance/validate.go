package main

import (
	"fmt"

	"github.com/aretw0/parlance/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check the agent definition for consistency",
	Long: `Reports missing initial or error states, transitions to unknown states,
empty prompts and states unreachable from the initial state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			path = args[0]
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d states)\n", path, len(cfg.States))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
