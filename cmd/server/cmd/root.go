package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// logLevel overrides LOG_LEVEL when set.
var logLevel string

var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Event registration API server",
		Long: `Event registration API server.

Users sign up as organizers or participants and sign in for a bearer token.
Organizers create events and broadcast emails; participants register for events.
Configuration is read from the environment (and .env outside production).`,
		SilenceUsage: true,
		// Serve when no subcommand is given.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), 0)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command. It is called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
