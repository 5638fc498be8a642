package history

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endsong0 = `[
  {"ts": "2021-03-04T12:00:00Z", "ms_played": 180000,
   "master_metadata_track_name": "Come Together",
   "master_metadata_album_album_name": "Abbey Road",
   "master_metadata_album_artist_name": "The Beatles",
   "spotify_track_uri": "spotify:track:2EqlS6tkEnglzr7tkKAAYD",
   "reason_end": "trackdone"},
  {"ts": "2021-03-02T08:30:00Z", "ms_played": 5000,
   "master_metadata_track_name": "Something",
   "master_metadata_album_album_name": "Abbey Road",
   "master_metadata_album_artist_name": "The Beatles",
   "spotify_track_uri": "spotify:track:0pNeVovbiZHkulpGeOx1Gj",
   "reason_end": "fwdbtn"}
]`

const endsong1 = `[
  {"ts": "2021-03-03T09:00:00Z", "ms_played": 60000,
   "master_metadata_track_name": null,
   "master_metadata_album_album_name": null,
   "master_metadata_album_artist_name": null,
   "spotify_track_uri": null,
   "reason_end": "endplay"}
]`

func newExportFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/export/endsong_0.json", []byte(endsong0), 0644))
	require.NoError(t, afero.WriteFile(fs, "/export/endsong_1.json", []byte(endsong1), 0644))
	require.NoError(t, afero.WriteFile(fs, "/export/Userdata.json", []byte(`{}`), 0644))
	return fs
}

func TestLoadDirectory(t *testing.T) {
	fs := newExportFs(t)

	table, err := Load(fs, "/export")
	require.NoError(t, err)
	require.Len(t, table, 3)

	// sorted by timestamp across files
	assert.Equal(t, "Something", table[0].TrackName)
	assert.Equal(t, "", table[1].TrackName, "null names become empty strings")
	assert.Equal(t, "Come Together", table[2].TrackName)

	assert.Equal(t, ForwardButton, table[0].EndReason)
	assert.Equal(t, TrackDone, table[2].EndReason)
	assert.Equal(t, "spotify:track:2EqlS6tkEnglzr7tkKAAYD", table[2].TrackKey)
	assert.InDelta(t, 3.0, table[2].Minutes(), 1e-9)
}

func TestLoadSingleFile(t *testing.T) {
	fs := newExportFs(t)

	table, err := Load(fs, "/export/endsong_0.json")
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestLoadCSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	csv := "ts,ms_played,master_metadata_track_name,master_metadata_album_album_name,master_metadata_album_artist_name,spotify_track_uri,reason_end,shuffle\n" +
		"2021-03-04 12:00:00+00:00,180000.0,Come Together,Abbey Road,The Beatles,spotify:track:a,trackdone,False\n" +
		"2021-03-01T12:00:00Z,1000,,,,,fwdbtn,True\n"
	require.NoError(t, afero.WriteFile(fs, "/streaming_history.csv", []byte(csv), 0644))

	table, err := Load(fs, "/streaming_history.csv")
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "", table[0].ArtistName)
	assert.Equal(t, int64(180000), table[1].MsPlayed)
	assert.Equal(t, time.Date(2021, 3, 4, 12, 0, 0, 0, time.UTC), table[1].Timestamp.UTC())
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad/endsong_0.json", []byte(`[{"ts": "yesterday"}]`), 0644))
	require.NoError(t, fs.MkdirAll("/empty", 0755))

	tests := []struct {
		name string
		path string
	}{
		{"missing path", "/nope"},
		{"bad timestamp", "/bad"},
		{"no export files", "/empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Load(fs, tt.path)
			require.Error(t, err)
			assert.Nil(t, table, "no partial table on error")

			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}

	_, err := Load(fs, "/empty")
	assert.ErrorIs(t, err, ErrNoExportFiles)
}

func TestBetween(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2021, 3, d, 0, 0, 0, 0, time.UTC) }
	table := Table{
		{Timestamp: day(1), TrackName: "a"},
		{Timestamp: day(2), TrackName: "b"},
		{Timestamp: day(3), TrackName: "c"},
	}

	got := table.Between(day(2), day(3))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].TrackName)

	assert.Len(t, table.Between(time.Time{}, time.Time{}), 3)
	assert.Len(t, table.Between(day(2), time.Time{}), 2)
	assert.Len(t, table, 3, "Between must not modify the table")
}
