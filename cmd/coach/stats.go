package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/history"
	"github.com/discochess/coach/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about the data directory",
	Long: `Display statistics about the data directory including:
- Number and size of stored profiles
- Number and size of game archives
- Number of stored game analyses`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory %q does not exist", dataDir)
	}

	profiles, profileSize, err := countFiles(filepath.Join(dataDir, store.ProfilesDir), ".json")
	if err != nil {
		return err
	}
	archives, archiveSize, err := countFiles(filepath.Join(dataDir, store.GamesDir), ".pgn")
	if err != nil {
		return err
	}

	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Printf("Profiles:       %d (%s)\n", profiles, formatBytes(profileSize))
	fmt.Printf("Game archives:  %d (%s)\n", archives, formatBytes(archiveSize))

	historyPath := filepath.Join(dataDir, coach.HistoryFile)
	if _, err := os.Stat(historyPath); err == nil {
		h, err := history.Open(historyPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer h.Close()
		n, err := h.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Analyses:       %d\n", n)
	}

	return nil
}

// countFiles counts the regular files in dir whose name contains marker.
// A missing directory counts as empty.
func countFiles(dir, marker string) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	var count int
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), marker) {
			continue
		}
		count++
		info, err := entry.Info()
		if err != nil {
			continue
		}
		size += info.Size()
	}
	return count, size, nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
