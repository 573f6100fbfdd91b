package profile

import (
	"fmt"
	"time"
)

// Progress reports how far a profile build has come.
type Progress struct {
	Username     string
	Games        int
	MaxGames     int
	Moves        int
	GamesSkipped int
	StartTime    time.Time
	Done         bool
}

// ProgressFunc is called after every analysed game and once at the end.
type ProgressFunc func(Progress)

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	if p.Done {
		fmt.Printf("\n[Done] %s: %d games, %d moves (%s)\n",
			p.Username, p.Games, p.Moves, FormatDuration(time.Since(p.StartTime)))
		return
	}
	fmt.Printf("\r[Profile] %s: %d / %d games, %d moves, %d skipped",
		p.Username, p.Games, p.MaxGames, p.Moves, p.GamesSkipped)
}
