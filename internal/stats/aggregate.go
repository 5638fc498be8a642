package stats

import "math"

// Key is the grouping key of a leaderboard row. Fields that are not part of
// the kind's grouping are empty.
type Key struct {
	Track  string
	Album  string
	Artist string
}

// Entry is an unranked leaderboard row.
type Entry struct {
	Key
	Plays   int
	Minutes float64
	// LookupKey is the representative catalog key used to fetch an image.
	LookupKey string
}

// Hours is the summed listening time, rounded to two decimals.
func (e Entry) Hours() float64 {
	return math.Round(e.Minutes/60*100) / 100
}

func (s *kindSpec) key(p Play) Key {
	switch s.group {
	case byAlbum:
		return Key{Album: p.AlbumName, Artist: p.ArtistName}
	case byArtist:
		return Key{Artist: p.ArtistName}
	default:
		return Key{Track: p.TrackName, Album: p.AlbumName, Artist: p.ArtistName}
	}
}

// filterPlays applies the skip policy of a leaderboard. Skipped leaderboards
// only ever count unfinished plays.
func filterPlays(in []Play, s *kindSpec, excludeSkipped bool) []Play {
	if !s.skipped && !excludeSkipped {
		return in
	}
	out := make([]Play, 0, len(in))
	for _, p := range in {
		if s.skipped {
			if !p.FullyPlayed {
				out = append(out, p)
			}
			continue
		}
		if p.FullyPlayed {
			out = append(out, p)
		}
	}
	return out
}

// aggregate groups plays by the kind's key. Groups are returned in the order
// they were first seen. Empty names form a group of their own.
func aggregate(in []Play, s *kindSpec) []Entry {
	index := make(map[Key]int)
	var out []Entry
	for _, p := range in {
		k := s.key(p)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Entry{Key: k})
		}
		out[i].Plays++
		out[i].Minutes += p.Minutes()
	}
	return out
}
