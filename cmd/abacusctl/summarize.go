package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abacusquest/abacusquest/internal/goals"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/abacusquest/abacusquest/internal/progress"
	"github.com/spf13/cobra"
)

// progressFile is a saved progress endpoint response. Practice stats are kept
// raw since older exports carry only flat totals.
type progressFile struct {
	Levels        []models.LevelProgress `json:"levels"`
	PracticeStats json.RawMessage        `json:"practiceStats"`
}

func newSummarizeCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "summarize <progress.json|->",
		Short: "Reduce a saved progress payload into dashboard stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.DateOnly, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var payload progressFile
			if err := json.NewDecoder(in).Decode(&payload); err != nil {
				return fmt.Errorf("decode progress payload: %w", err)
			}
			stats, err := practice.ParseStats(payload.PracticeStats)
			if err != nil {
				return err
			}

			summary := models.ProgressSummary{
				Progress:    progress.CalculateStats(payload.Levels),
				Levels:      progress.SummarizeLevels(payload.Levels),
				Practice:    practice.CalculateStats(stats),
				WeeklyGoals: goals.CalculateWeekly(stats, payload.Levels, goals.Options{Now: now, Scope: goals.ScopeAllTime}),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate weekly goals as of this date (YYYY-MM-DD)")
	return cmd
}
