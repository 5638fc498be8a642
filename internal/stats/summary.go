package stats

import "github.com/ademuri/spotify-stats/internal/history"

// Summary is the total time spent listening.
type Summary struct {
	Hours float64
	Days  float64
}

// Summarize totals the listening time of every event in the table, including
// skipped ones. Callers filter the table first to narrow it.
func Summarize(table history.Table) Summary {
	var minutes float64
	for _, e := range table {
		minutes += e.Minutes()
	}
	hours := minutes / 60
	return Summary{Hours: hours, Days: hours / 24}
}
