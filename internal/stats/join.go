package stats

// join attaches a representative lookup key to every entry. The key is the
// track key of the first play of the group, or the artist name for artist
// leaderboards. plays must be the same filtered plays the entries were
// aggregated from.
func join(entries []Entry, in []Play, s *kindSpec) []Entry {
	first := make(map[Key]string, len(entries))
	for _, p := range in {
		k := s.key(p)
		if _, ok := first[k]; ok {
			continue
		}
		if s.group == byArtist {
			first[k] = p.ArtistName
		} else {
			first[k] = p.TrackKey
		}
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		lookup, ok := first[e.Key]
		if !ok {
			// Unreachable when entries come from the same plays.
			continue
		}
		e.LookupKey = lookup
		out = append(out, e)
	}
	return out
}
