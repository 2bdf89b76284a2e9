package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cortlandcast/server"
)

var rootCmd = &cobra.Command{
	Use:   "cortlandcast",
	Short: "Cortland Cast bridges the local music player onto the network.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
