package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one maintenance pass and exit",
	Long: "Reports listings with unreadable deadlines or missing creation times and " +
		"prunes notifications older than 12 hours: the same pass serve runs on a schedule.",
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	s, err := openServer(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Sweeper().RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "anomalies: %d\n", len(res.Anomalies))
	for _, a := range res.Anomalies {
		fmt.Fprintf(w, "  %s  %-20s %s %q\n", a.RecordID, a.Kind, a.Title, a.Value)
	}
	fmt.Fprintf(w, "notifications pruned: %d\n", res.Pruned)
	return nil
}
