package stats

import (
	"fmt"
	"strconv"
)

// Kind selects a leaderboard.
type Kind int

const (
	TopSongs Kind = iota
	TopSongsByDuration
	TopAlbums
	TopArtists
	TopArtistsByPlays
	TopSkipped
)

type grouping int

const (
	byTrack grouping = iota // track, album and artist
	byAlbum                 // album and artist
	byArtist
)

type metric int

const (
	countPlays metric = iota
	sumDuration
)

// column is one typed field of a leaderboard's output schema.
type column struct {
	name string
	cell func(Row) string
}

var (
	trackColumn  = column{"Track", func(r Row) string { return r.Track }}
	albumColumn  = column{"Album", func(r Row) string { return r.Album }}
	artistColumn = column{"Artist", func(r Row) string { return r.Artist }}
)

func playsColumn(name string) column {
	return column{name, func(r Row) string { return strconv.Itoa(r.Plays) }}
}

func hoursColumn(name string) column {
	return column{name, func(r Row) string { return strconv.FormatFloat(r.Hours, 'f', -1, 64) }}
}

// kindSpec is the static definition of a leaderboard kind.
type kindSpec struct {
	name  string
	title string
	group grouping
	by    metric
	// skipped leaderboards aggregate only plays that were not finished.
	skipped bool
	// image is the header of the enrichment column.
	image   string
	columns []column
}

var kinds = map[Kind]*kindSpec{
	TopSongs: {
		name:    "top-songs",
		title:   "Top songs",
		group:   byTrack,
		by:      countPlays,
		image:   "Cover",
		columns: []column{trackColumn, albumColumn, artistColumn, playsColumn("Times played")},
	},
	TopSongsByDuration: {
		name:    "top-songs-duration",
		title:   "Top songs by time listened",
		group:   byTrack,
		by:      sumDuration,
		image:   "Cover",
		columns: []column{trackColumn, albumColumn, artistColumn, hoursColumn("Hours listened")},
	},
	TopAlbums: {
		name:    "top-albums",
		title:   "Top albums",
		group:   byAlbum,
		by:      countPlays,
		image:   "Cover",
		columns: []column{albumColumn, artistColumn, playsColumn("Number of songs played")},
	},
	TopArtists: {
		name:    "top-artists",
		title:   "Top artists",
		group:   byArtist,
		by:      sumDuration,
		image:   "Image",
		columns: []column{artistColumn, hoursColumn("Hours listened")},
	},
	TopArtistsByPlays: {
		name:    "top-artists-plays",
		title:   "Top artists by plays",
		group:   byArtist,
		by:      countPlays,
		image:   "Image",
		columns: []column{artistColumn, playsColumn("Times played")},
	},
	TopSkipped: {
		name:    "top-skipped",
		title:   "Most skipped songs",
		group:   byTrack,
		by:      countPlays,
		skipped: true,
		image:   "Cover",
		columns: []column{trackColumn, albumColumn, artistColumn, playsColumn("Times skipped")},
	},
}

// Kinds lists every leaderboard kind in display order.
func Kinds() []Kind {
	return []Kind{TopSongs, TopSongsByDuration, TopAlbums, TopArtists, TopArtistsByPlays, TopSkipped}
}

// ParseKind returns the kind with the given name, e.g. "top-albums".
func ParseKind(name string) (Kind, error) {
	for k, spec := range kinds {
		if spec.name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown leaderboard %q: %w", name, ErrInvalidArgument)
}

func (k Kind) spec() (*kindSpec, error) {
	spec, ok := kinds[k]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard kind %d: %w", int(k), ErrInvalidArgument)
	}
	return spec, nil
}

func (k Kind) String() string {
	if spec, ok := kinds[k]; ok {
		return spec.name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Title is the human readable heading of the leaderboard.
func (k Kind) Title() string {
	if spec, ok := kinds[k]; ok {
		return spec.title
	}
	return k.String()
}
