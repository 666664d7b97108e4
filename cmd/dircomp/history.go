package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/dircomp/pkg/dircomp/config"
	"github.com/jamesainslie/dircomp/pkg/dircomp/manifest"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View copy operation history",
	Long: `View the history of copy operations.

Every copy performed between the two sides is recorded, including the
direction, the entry copied, and how many files and bytes were
transferred.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

// getHistory returns the manifest log at the configured directory.
func getHistory() (*manifest.Log, error) {
	dir := ""
	if cfg, err := config.LoadFile(cfgFile); err == nil {
		dir = cfg.History.Path
	} else {
		// Fall back to the default directory if config fails to load
		printVerbose("failed to load config: %v", err)
	}
	if dir == "" {
		dir = manifest.DefaultDir()
	}
	return manifest.Open(dir)
}

// runHistory lists recent copy operations, newest first.
func runHistory(cmd *cobra.Command, args []string) error {
	log, err := getHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	records, err := log.List()
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		printInfo("No history entries found.")
		printInfo("Copy operations performed in the TUI are recorded here.")
		return nil
	}

	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	fmt.Printf("\n%-20s  %-9s  %-30s  %6s  %-10s  %s\n",
		"WHEN", "DIRECTION", "PATH", "FILES", "SIZE", "OUTCOME")
	fmt.Println(strings.Repeat("-", 90))

	for _, r := range records {
		outcome := r.Outcome
		if r.OK() {
			outcome = "ok"
		}
		fmt.Printf("%-20s  %-9s  %-30s  %6d  %-10s  %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			directionArrow(r.From),
			truncateString(r.RelPath, 30),
			r.Files,
			types.FormatSize(r.Bytes),
			truncateString(outcome, 40),
		)
	}

	fmt.Println(strings.Repeat("-", 90))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(records))
	return nil
}

func directionArrow(from types.Side) string {
	if from == types.Left {
		return "left  ->"
	}
	return "right <-"
}

// truncateString shortens a string to maxLen, appending "..." when
// truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
