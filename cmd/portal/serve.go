package main

import (
	"github.com/spf13/cobra"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background sweeper",
	Long:  "Starts the portal API on $PORT and sweeps listings every $SWEEP_INTERVAL_MINUTES until interrupted.",
	RunE:  runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	s, err := openServer(cmd.Context(), logger, func(cfg *config.Config) {
		if servePort > 0 {
			cfg.Port = servePort
		}
	})
	if err != nil {
		return err
	}
	// Start closes the server on the way out
	return s.Start(cmd.Context())
}
