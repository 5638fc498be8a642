package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ImageKind distinguishes the two lookup namespaces.
type ImageKind string

const (
	TrackCover  ImageKind = "cover"
	ArtistImage ImageKind = "artist"
)

// GetImage returns the cached URL for key if it was fetched within maxAge.
// A maxAge of zero accepts entries of any age.
func (s *Store) GetImage(kind ImageKind, key string, maxAge time.Duration) (url string, ok bool, err error) {
	row := s.db.QueryRow("SELECT url, fetched_at FROM Image WHERE kind = ? AND key = ?", kind, key)
	var fetched sql.NullTime
	err = row.Scan(&url, &fetched)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %s image for %q: %w", kind, key, err)
	}

	if maxAge > 0 && (!fetched.Valid || time.Since(fetched.Time) > maxAge) {
		return "", false, nil
	}
	return url, true, nil
}

// PutImage stores or replaces the URL for key.
func (s *Store) PutImage(kind ImageKind, key, url string, fetched time.Time) error {
	_, err := s.db.Exec(`
	INSERT INTO Image (kind, key, url, fetched_at) VALUES (?, ?, ?, ?)
	ON CONFLICT (kind, key) DO UPDATE SET url = excluded.url, fetched_at = excluded.fetched_at
	`, kind, key, url, fetched.UTC())
	if err != nil {
		return fmt.Errorf("saving %s image for %q: %w", kind, key, err)
	}
	return nil
}

// PruneImages deletes entries fetched before the cutoff and returns how many
// were removed.
func (s *Store) PruneImages(before time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM Image WHERE fetched_at IS NULL OR fetched_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning images: %w", err)
	}
	return res.RowsAffected()
}
