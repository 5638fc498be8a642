package history

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// File name prefixes of the extended streaming history export. Older exports
// use endsong_N.json, newer ones Streaming_History_Audio_YYYY.json.
var exportPrefixes = []string{"endsong_", "Streaming_History_Audio_"}

// LoadError reports an export file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrNoExportFiles is returned when a directory contains no export files.
var ErrNoExportFiles = errors.New("no streaming history files found")

// record is one entry of the export as written by Spotify.
type record struct {
	Timestamp  string  `json:"ts"`
	MsPlayed   int64   `json:"ms_played"`
	TrackName  *string `json:"master_metadata_track_name"`
	AlbumName  *string `json:"master_metadata_album_album_name"`
	ArtistName *string `json:"master_metadata_album_artist_name"`
	TrackURI   *string `json:"spotify_track_uri"`
	ReasonEnd  *string `json:"reason_end"`
}

func (r record) event() (Event, error) {
	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return Event{}, err
	}
	if r.MsPlayed < 0 {
		return Event{}, fmt.Errorf("negative ms_played %d", r.MsPlayed)
	}
	return Event{
		Timestamp:  ts,
		TrackName:  deref(r.TrackName),
		AlbumName:  deref(r.AlbumName),
		ArtistName: deref(r.ArtistName),
		TrackKey:   deref(r.TrackURI),
		MsPlayed:   r.MsPlayed,
		EndReason:  EndReason(deref(r.ReasonEnd)),
	}, nil
}

// Timestamp layouts seen in exports. The second is what pandas writes when
// the JSON export has been converted to CSV.
var timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04:05-07:00"}

func parseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing ts %q: unknown format", ts)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Load reads the streaming history at path into a Table sorted by timestamp.
// path is either a directory holding the export's JSON files, or a single
// .json or .csv file. Any unreadable file fails the whole load.
func Load(fs afero.Fs, path string) (Table, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var files []string
	if info.IsDir() {
		files, err = exportFiles(fs, path)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	var table Table
	for _, file := range files {
		events, err := loadFile(fs, file)
		if err != nil {
			return nil, &LoadError{Path: file, Err: err}
		}
		table = append(table, events...)
	}
	table.sortByTime()
	return table, nil
}

func exportFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		for _, prefix := range exportPrefixes {
			if strings.HasPrefix(entry.Name(), prefix) {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	if len(files) == 0 {
		return nil, &LoadError{Path: dir, Err: ErrNoExportFiles}
	}
	sort.Strings(files)
	return files, nil
}

func loadFile(fs afero.Fs, path string) ([]Event, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(f)
	case ".csv":
		return decodeCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func decodeJSON(r io.Reader) ([]Event, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	events := make([]Event, 0, len(records))
	for i, rec := range records {
		e, err := rec.event()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// decodeCSV reads a flattened export with a header row naming the same
// fields as the JSON export. Extra columns are ignored.
func decodeCSV(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"ts", "ms_played"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", required)
		}
	}

	field := func(row []string, name string) *string {
		i, ok := columns[name]
		if !ok || i >= len(row) || row[i] == "" {
			return nil
		}
		return &row[i]
	}

	var events []Event
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		rec := record{
			Timestamp:  deref(field(row, "ts")),
			TrackName:  field(row, "master_metadata_track_name"),
			AlbumName:  field(row, "master_metadata_album_album_name"),
			ArtistName: field(row, "master_metadata_album_artist_name"),
			TrackURI:   field(row, "spotify_track_uri"),
			ReasonEnd:  field(row, "reason_end"),
		}
		if ms := field(row, "ms_played"); ms != nil {
			// pandas writes integer columns with missing values as floats.
			f, err := strconv.ParseFloat(*ms, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing ms_played %q: %w", line, *ms, err)
			}
			rec.MsPlayed = int64(f)
		}

		e, err := rec.event()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	return events, nil
}
