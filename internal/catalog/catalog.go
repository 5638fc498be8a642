// Package catalog resolves tracks and artists to image URLs using online
// music catalogs.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ademuri/spotify-stats/internal/stats"
)

var (
	// ErrNoImage is returned when the catalog knows the item but has no
	// picture for it.
	ErrNoImage = errors.New("no image available")
	// ErrNotFound is returned when the catalog does not know the item.
	ErrNotFound = errors.New("not found in catalog")
)

// StatusError is an unexpected HTTP status from a catalog API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: status %d", e.StatusCode)
}

// CoverSource looks up album covers by track key.
type CoverSource interface {
	TrackCover(ctx context.Context, trackKey string) (string, error)
}

// ArtistSource looks up artist pictures by name.
type ArtistSource interface {
	ArtistImage(ctx context.Context, artist string) (string, error)
}

// Split sends cover and artist lookups to different catalogs.
type Split struct {
	Covers  CoverSource
	Artists ArtistSource
}

var _ stats.ImageGateway = Split{}

func (s Split) TrackCover(ctx context.Context, trackKey string) (string, error) {
	return s.Covers.TrackCover(ctx, trackKey)
}

func (s Split) ArtistImage(ctx context.Context, artist string) (string, error) {
	return s.Artists.ArtistImage(ctx, artist)
}
