package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ademuri/spotify-stats/internal/stats"
	"github.com/ademuri/spotify-stats/internal/store"
)

// Cached remembers lookups of another gateway in the image store. Failed
// lookups are not cached. A broken cache degrades to direct lookups.
type Cached struct {
	next   stats.ImageGateway
	store  *store.Store
	maxAge time.Duration
	now    func() time.Time
}

var _ stats.ImageGateway = (*Cached)(nil)

// NewCached wraps next. Entries older than maxAge are fetched again; zero
// keeps them forever.
func NewCached(next stats.ImageGateway, s *store.Store, maxAge time.Duration) *Cached {
	return &Cached{next: next, store: s, maxAge: maxAge, now: time.Now}
}

func (c *Cached) TrackCover(ctx context.Context, trackKey string) (string, error) {
	return c.lookup(ctx, store.TrackCover, trackKey, c.next.TrackCover)
}

func (c *Cached) ArtistImage(ctx context.Context, artist string) (string, error) {
	return c.lookup(ctx, store.ArtistImage, artist, c.next.ArtistImage)
}

func (c *Cached) lookup(ctx context.Context, kind store.ImageKind, key string, fetch func(context.Context, string) (string, error)) (string, error) {
	logger := zerolog.Ctx(ctx)

	url, ok, err := c.store.GetImage(kind, key, c.maxAge)
	if err != nil {
		logger.Warn().Err(err).Msg("image cache read failed")
	} else if ok {
		return url, nil
	}

	url, err = fetch(ctx, key)
	if err != nil {
		return "", err
	}

	if err := c.store.PutImage(kind, key, url, c.now()); err != nil {
		logger.Warn().Err(err).Msg("image cache write failed")
	}
	return url, nil
}
