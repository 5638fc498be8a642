// Package stats computes listening leaderboards from a streaming history.
package stats

import "github.com/ademuri/spotify-stats/internal/history"

// Play is an event annotated with whether it was listened to the end.
type Play struct {
	history.Event
	FullyPlayed bool
}

// Classify derives the fully-played flag for every event. The table is left
// untouched.
func Classify(table history.Table) []Play {
	out := make([]Play, len(table))
	for i, e := range table {
		out[i] = Play{Event: e, FullyPlayed: e.EndReason == history.TrackDone}
	}
	return out
}
