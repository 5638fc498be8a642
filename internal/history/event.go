// Package history holds the streaming-history event table and its loader.
package history

import (
	"sort"
	"time"
)

// EndReason is the cause reported for a playback stopping.
type EndReason string

const (
	// TrackDone means the track played to its natural end.
	TrackDone      EndReason = "trackdone"
	ForwardButton  EndReason = "fwdbtn"
	BackButton     EndReason = "backbtn"
	EndPlay        EndReason = "endplay"
	Logout         EndReason = "logout"
	TrackError     EndReason = "trackerror"
	UnexpectedExit EndReason = "unexpected-exit"
)

// Event is a single play or skip of a track.
type Event struct {
	Timestamp  time.Time
	TrackName  string
	AlbumName  string
	ArtistName string
	// TrackKey identifies the track in the catalog. It is only used to look up
	// cover art, never for grouping.
	TrackKey  string
	MsPlayed  int64
	EndReason EndReason
}

// Minutes returns the listening time of the event in minutes.
func (e Event) Minutes() float64 {
	return float64(e.MsPlayed) / 60000
}

// Table is an ordered sequence of events, oldest first.
type Table []Event

// sortByTime orders the table by timestamp. Events sharing a timestamp keep
// their file order.
func (t Table) sortByTime() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Timestamp.Before(t[j].Timestamp)
	})
}

// Between returns the events played in [start, end). A zero start or end
// leaves that side of the window open.
func (t Table) Between(start, end time.Time) Table {
	out := make(Table, 0, len(t))
	for _, e := range t {
		if !start.IsZero() && e.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !e.Timestamp.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}
