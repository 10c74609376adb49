package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the opportunities board as visitors would see it",
	Long: "Loads every stored opportunity, applies the same filters and ordering as " +
		"GET /api/opportunities and writes the result as JSON.",
	RunE: runRank,
}

var (
	rankSearch     string
	rankCategory   string
	rankWorkMode   string
	rankMinStipend string
	rankPreview    bool
	rankOutput     string
)

func init() {
	rankCmd.Flags().StringVarP(&rankSearch, "query", "q", "", "Search text matched against title and company")
	rankCmd.Flags().StringVarP(&rankCategory, "category", "c", "", "Category filter, e.g. internship (default all)")
	rankCmd.Flags().StringVarP(&rankWorkMode, "work-mode", "w", "", "Work mode filter: on-site, remote or hybrid (default all)")
	rankCmd.Flags().StringVar(&rankMinStipend, "min-stipend", "", "Minimum numeric stipend")
	rankCmd.Flags().BoolVar(&rankPreview, "preview", false, "Only the home page preview")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Write JSON here instead of stdout")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	s, err := openServer(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := ranking.ParseCriteria(rankSearch, rankCategory, rankWorkMode, rankMinStipend)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	opps := s.Services().Opportunities
	var out any
	if rankPreview {
		out, err = opps.Preview(cmd.Context(), c)
	} else {
		out, err = opps.List(cmd.Context(), c)
	}
	if err != nil {
		return fmt.Errorf("ranking opportunities: %w", err)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal opportunities to JSON: %w", err)
	}

	if rankOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(rankOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", rankOutput, err)
	}
	return nil
}
