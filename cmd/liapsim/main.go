// liapsim is an offline tool for the Liap game core: it runs full bot
// self-play games against the real engine and replays archived event logs.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "liapsim",
	Short: "Liap self-play simulation and event log replay",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
