package stats

import (
	"cmp"
	"slices"
	"strconv"
)

func (s *kindSpec) value(e Entry) float64 {
	if s.by == sumDuration {
		return e.Minutes
	}
	return float64(e.Plays)
}

// rank orders entries by the kind's metric, highest first, and keeps the
// first top of them. Ties keep their input order. top of zero keeps all.
func rank(entries []Entry, s *kindSpec, top int) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return cmp.Compare(s.value(b), s.value(a))
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// row builds the presentation row for an entry at a given place.
func (s *kindSpec) row(place int, e Entry) Row {
	r := Row{Place: place, Artist: e.Artist}
	if s.group != byArtist {
		r.Album = e.Album
	}
	if s.group == byTrack {
		r.Track = e.Track
	}
	if s.by == sumDuration {
		r.Hours = e.Hours()
	} else {
		r.Plays = e.Plays
	}
	return r
}

func (s *kindSpec) header(withImage bool) []string {
	h := make([]string, 0, len(s.columns)+2)
	h = append(h, "Place")
	if withImage {
		h = append(h, s.image)
	}
	for _, c := range s.columns {
		h = append(h, c.name)
	}
	return h
}

func (s *kindSpec) record(r Row, image *string) []string {
	rec := make([]string, 0, len(s.columns)+2)
	rec = append(rec, strconv.Itoa(r.Place))
	if image != nil {
		rec = append(rec, *image)
	}
	for _, c := range s.columns {
		rec = append(rec, c.cell(r))
	}
	return rec
}
