package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademuri/spotify-stats/internal/store"
)

type countingGateway struct {
	calls map[string]int
	err   error
}

func (g *countingGateway) TrackCover(_ context.Context, key string) (string, error) {
	g.calls["cover:"+key]++
	if g.err != nil {
		return "", g.err
	}
	return "https://covers/" + key, nil
}

func (g *countingGateway) ArtistImage(_ context.Context, artist string) (string, error) {
	g.calls["artist:"+artist]++
	if g.err != nil {
		return "", g.err
	}
	return "https://artists/" + artist, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCachedServesRepeatLookupsFromStore(t *testing.T) {
	next := &countingGateway{calls: map[string]int{}}
	cached := NewCached(next, newTestStore(t), time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		url, err := cached.TrackCover(ctx, "spotify:track:a")
		require.NoError(t, err)
		assert.Equal(t, "https://covers/spotify:track:a", url)

		url, err = cached.ArtistImage(ctx, "The Beatles")
		require.NoError(t, err)
		assert.Equal(t, "https://artists/The Beatles", url)
	}
	assert.Equal(t, 1, next.calls["cover:spotify:track:a"])
	assert.Equal(t, 1, next.calls["artist:The Beatles"])
}

func TestCachedRefetchesExpiredEntries(t *testing.T) {
	next := &countingGateway{calls: map[string]int{}}
	cached := NewCached(next, newTestStore(t), time.Hour)
	cached.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	ctx := context.Background()

	_, err := cached.TrackCover(ctx, "k")
	require.NoError(t, err)
	_, err = cached.TrackCover(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls["cover:k"])
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	boom := errors.New("boom")
	next := &countingGateway{calls: map[string]int{}, err: boom}
	cached := NewCached(next, newTestStore(t), 0)
	ctx := context.Background()

	_, err := cached.ArtistImage(ctx, "X")
	assert.ErrorIs(t, err, boom)

	next.err = nil
	url, err := cached.ArtistImage(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "https://artists/X", url)
	assert.Equal(t, 2, next.calls["artist:X"])
}

func TestSplitRoutesLookups(t *testing.T) {
	covers := &countingGateway{calls: map[string]int{}}
	artists := &countingGateway{calls: map[string]int{}}
	gw := Split{Covers: covers, Artists: artists}
	ctx := context.Background()

	_, err := gw.TrackCover(ctx, "k")
	require.NoError(t, err)
	_, err = gw.ArtistImage(ctx, "X")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"cover:k": 1}, covers.calls)
	assert.Equal(t, map[string]int{"artist:X": 1}, artists.calls)
}
