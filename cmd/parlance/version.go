package main

import (
	"fmt"

	"github.com/aretw0/parlance"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of parlance",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "parlance version %s\n", parlance.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
