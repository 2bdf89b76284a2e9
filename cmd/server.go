package cmd

import (
	"github.com/spf13/cobra"

	"cortlandcast/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the bridge server",
	Long:  `Start the HTTP and WebSocket server that exposes the local music player, its library and artwork.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
