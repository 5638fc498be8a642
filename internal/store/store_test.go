package store

import (
	"path/filepath"
	"testing"
	"time"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "spotify-stats.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func TestNewIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spotify-stats.db")

	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("New(%s) attempt %d error: %v", dbPath, i, err)
		}
		s.Close()
	}
}

func TestPutAndGetImage(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	_, ok, err := s.GetImage(TrackCover, "spotify:track:a", 0)
	if err != nil {
		t.Fatalf("GetImage on empty cache: %v", err)
	}
	if ok {
		t.Fatalf("GetImage on empty cache returned a hit")
	}

	if err := s.PutImage(TrackCover, "spotify:track:a", "https://i.scdn.co/image/a", time.Now()); err != nil {
		t.Fatalf("PutImage: %v", err)
	}

	url, ok, err := s.GetImage(TrackCover, "spotify:track:a", time.Hour)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !ok || url != "https://i.scdn.co/image/a" {
		t.Errorf("GetImage = %q, %v; want the stored url", url, ok)
	}

	// Same key in the other namespace is a miss.
	_, ok, err = s.GetImage(ArtistImage, "spotify:track:a", 0)
	if err != nil {
		t.Fatalf("GetImage artist: %v", err)
	}
	if ok {
		t.Errorf("GetImage returned a cover for an artist lookup")
	}

	// Replacing keeps a single row.
	if err := s.PutImage(TrackCover, "spotify:track:a", "https://i.scdn.co/image/b", time.Now()); err != nil {
		t.Fatalf("PutImage (replace): %v", err)
	}
	url, _, _ = s.GetImage(TrackCover, "spotify:track:a", 0)
	if url != "https://i.scdn.co/image/b" {
		t.Errorf("Expected replaced url, got %q", url)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Image").Scan(&count); err != nil {
		t.Fatalf("counting images: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 image row, got %d", count)
	}
}

func TestGetImageExpired(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	old := time.Now().Add(-48 * time.Hour)
	if err := s.PutImage(ArtistImage, "The Beatles", "https://example.com/beatles.jpg", old); err != nil {
		t.Fatalf("PutImage: %v", err)
	}

	_, ok, err := s.GetImage(ArtistImage, "The Beatles", 24*time.Hour)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if ok {
		t.Errorf("Expected expired entry to be a miss")
	}

	_, ok, _ = s.GetImage(ArtistImage, "The Beatles", 0)
	if !ok {
		t.Errorf("Expected entry to be returned when maxAge is 0")
	}

	removed, err := s.PruneImages(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneImages: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 pruned image, got %d", removed)
	}
}
