package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademuri/spotify-stats/internal/history"
	"github.com/ademuri/spotify-stats/internal/stats"
)

type coverGateway struct{}

func (coverGateway) TrackCover(_ context.Context, key string) (string, error) {
	if key == "nocover" {
		return "", nil
	}
	return "https://img/" + key, nil
}

func (coverGateway) ArtistImage(_ context.Context, artist string) (string, error) {
	return "https://img/" + artist, nil
}

func testEngine() *stats.Engine {
	at := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	return stats.New(history.Table{
		{Timestamp: at, TrackName: "A & B", AlbumName: "X", ArtistName: "P", TrackKey: "k1", MsPlayed: 60000, EndReason: history.TrackDone},
		{Timestamp: at.Add(time.Minute), TrackName: "A & B", AlbumName: "X", ArtistName: "P", TrackKey: "k1", MsPlayed: 60000, EndReason: history.TrackDone},
		{Timestamp: at.Add(2 * time.Minute), TrackName: "C", AlbumName: "Y", ArtistName: "Q", TrackKey: "nocover", MsPlayed: 60000, EndReason: history.TrackDone},
	})
}

func TestText(t *testing.T) {
	board, err := testEngine().Leaderboard(stats.TopSongs, stats.Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Text(&out, board))
	assert.Contains(t, out.String(), "A & B")
	assert.Contains(t, strings.ToLower(out.String()), "times played")
}

func TestHTML(t *testing.T) {
	board, err := testEngine().Leaderboard(stats.TopSongs, stats.Options{Top: 1})
	require.NoError(t, err)

	page := HTML("Top <songs>", board)
	assert.Contains(t, page, `href="/static/table.css"`)
	assert.Contains(t, page, "<h1>Top &lt;songs&gt;</h1>")
	assert.Contains(t, page, `<table class="mystyle">`)
	assert.Contains(t, page, "<th>Place</th><th>Track</th><th>Album</th><th>Artist</th><th>Times played</th>")
	assert.Contains(t, page, "<td>1</td><td>A & B</td><td>X</td><td>P</td><td>2</td>")
	assert.NotContains(t, page, "<img")
}

func TestHTMLImages(t *testing.T) {
	board, err := testEngine().EnrichedLeaderboard(context.Background(), stats.TopSongs, stats.Options{}, coverGateway{})
	require.NoError(t, err)

	page := HTML("Top songs", board)
	assert.Contains(t, page, "<th>Place</th><th>Cover</th>")
	assert.Contains(t, page, "<td>1</td><td><img src='https://img/k1'></td>")
	assert.Contains(t, page, "<td>2</td><td></td><td>C</td>")
}

func TestHTMLEmpty(t *testing.T) {
	board, err := stats.New(nil).Leaderboard(stats.TopAlbums, stats.Options{})
	require.NoError(t, err)

	assert.Contains(t, HTML("Top albums", board), "No listens found.")
}
