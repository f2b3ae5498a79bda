package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fractalqualia/video-downloader-api/internal/config"
	"github.com/fractalqualia/video-downloader-api/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded downloads",
	RunE:  historyRun,
}

func historyRun(cmd *cobra.Command, args []string) error {
	path, err := config.HistoryPath()
	if err != nil {
		return fmt.Errorf("resolving history path: %w", err)
	}

	entries, err := history.NewLog(path).Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No downloads recorded.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s\t%s\t%s\t%d bytes\n",
			e.When.Local().Format(time.RFC3339), e.PageURL, e.StreamURL, e.Bytes)
	}
	return nil
}
