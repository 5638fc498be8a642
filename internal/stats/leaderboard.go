package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ademuri/spotify-stats/internal/history"
)

// ErrInvalidArgument is returned for requests that can never succeed, such as
// a negative row count.
var ErrInvalidArgument = errors.New("invalid argument")

// GatewayError reports a failed image lookup.
type GatewayError struct {
	Key string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("looking up image for %q: %v", e.Key, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ImageGateway resolves catalog keys to image URLs.
type ImageGateway interface {
	// TrackCover returns the album cover URL of a track.
	TrackCover(ctx context.Context, trackKey string) (string, error)
	// ArtistImage returns a picture of the artist.
	ArtistImage(ctx context.Context, artist string) (string, error)
}

// Options controls a leaderboard computation.
type Options struct {
	// ExcludeSkipped drops plays that did not finish. It has no effect on the
	// skipped leaderboard.
	ExcludeSkipped bool

	// Top is the number of rows to return, default is all rows.
	Top int

	// DegradeImages leaves the image of a row empty when its lookup fails
	// instead of failing the whole leaderboard.
	DegradeImages bool
}

// Row is a ranked leaderboard row. Only the fields in the kind's schema are
// set.
type Row struct {
	Place  int
	Track  string
	Album  string
	Artist string
	Plays  int
	Hours  float64
}

// EnrichedRow is a Row with the URL of its cover or artist image.
type EnrichedRow struct {
	Row
	Image string
}

// Table is a rendered leaderboard, enriched or not.
type Table interface {
	Title() string
	Header() []string
	Records() [][]string
	// HasImages reports whether the second column holds image URLs.
	HasImages() bool
	Len() int
}

// Leaderboard is a ranked leaderboard without images.
type Leaderboard struct {
	Kind Kind
	Rows []Row
}

func (l Leaderboard) Title() string   { return l.Kind.Title() }
func (l Leaderboard) HasImages() bool { return false }
func (l Leaderboard) Len() int        { return len(l.Rows) }

func (l Leaderboard) Header() []string {
	return kinds[l.Kind].header(false)
}

func (l Leaderboard) Records() [][]string {
	spec := kinds[l.Kind]
	out := make([][]string, len(l.Rows))
	for i, r := range l.Rows {
		out[i] = spec.record(r, nil)
	}
	return out
}

// EnrichedLeaderboard is a ranked leaderboard with an image per row.
type EnrichedLeaderboard struct {
	Kind Kind
	Rows []EnrichedRow
}

func (l EnrichedLeaderboard) Title() string   { return l.Kind.Title() }
func (l EnrichedLeaderboard) HasImages() bool { return true }
func (l EnrichedLeaderboard) Len() int        { return len(l.Rows) }

func (l EnrichedLeaderboard) Header() []string {
	return kinds[l.Kind].header(true)
}

func (l EnrichedLeaderboard) Records() [][]string {
	spec := kinds[l.Kind]
	out := make([][]string, len(l.Rows))
	for i, r := range l.Rows {
		out[i] = spec.record(r.Row, &r.Image)
	}
	return out
}

// Engine computes leaderboards over one streaming history. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	plays []Play
}

// New classifies the table once for all later computations.
func New(table history.Table) *Engine {
	return &Engine{plays: Classify(table)}
}

func (e *Engine) prepare(kind Kind, opts Options) (*kindSpec, []Play, error) {
	spec, err := kind.spec()
	if err != nil {
		return nil, nil, err
	}
	if opts.Top < 0 {
		return nil, nil, fmt.Errorf("top %d: %w", opts.Top, ErrInvalidArgument)
	}
	return spec, filterPlays(e.plays, spec, opts.ExcludeSkipped), nil
}

// Leaderboard computes the ranked rows of a leaderboard.
func (e *Engine) Leaderboard(kind Kind, opts Options) (Leaderboard, error) {
	spec, filtered, err := e.prepare(kind, opts)
	if err != nil {
		return Leaderboard{}, err
	}

	ranked := rank(aggregate(filtered, spec), spec, opts.Top)
	rows := make([]Row, len(ranked))
	for i, entry := range ranked {
		rows[i] = spec.row(i+1, entry)
	}
	return Leaderboard{Kind: kind, Rows: rows}, nil
}

// EnrichedLeaderboard computes a leaderboard and looks up an image for each
// returned row. Lookups happen only for the rows that are returned.
func (e *Engine) EnrichedLeaderboard(ctx context.Context, kind Kind, opts Options, gw ImageGateway) (EnrichedLeaderboard, error) {
	spec, filtered, err := e.prepare(kind, opts)
	if err != nil {
		return EnrichedLeaderboard{}, err
	}
	if gw == nil {
		return EnrichedLeaderboard{}, fmt.Errorf("nil image gateway: %w", ErrInvalidArgument)
	}

	entries := join(aggregate(filtered, spec), filtered, spec)
	ranked := rank(entries, spec, opts.Top)
	rows := make([]EnrichedRow, len(ranked))
	for i, entry := range ranked {
		image, err := lookupImage(ctx, spec, gw, entry.LookupKey)
		if err != nil {
			if !opts.DegradeImages {
				return EnrichedLeaderboard{}, err
			}
			zerolog.Ctx(ctx).Warn().Err(err).Str("leaderboard", spec.name).Msg("omitting image")
			image = ""
		}
		rows[i] = EnrichedRow{Row: spec.row(i+1, entry), Image: image}
	}
	return EnrichedLeaderboard{Kind: kind, Rows: rows}, nil
}

// Compute returns an enriched leaderboard when images are requested and a
// gateway is available, and a plain one otherwise.
func (e *Engine) Compute(ctx context.Context, kind Kind, opts Options, images bool, gw ImageGateway) (Table, error) {
	if images && gw != nil {
		return e.EnrichedLeaderboard(ctx, kind, opts, gw)
	}
	return e.Leaderboard(kind, opts)
}

func lookupImage(ctx context.Context, spec *kindSpec, gw ImageGateway, key string) (string, error) {
	var (
		url string
		err error
	)
	if spec.group == byArtist {
		url, err = gw.ArtistImage(ctx, key)
	} else {
		url, err = gw.TrackCover(ctx, key)
	}
	if err != nil {
		return "", &GatewayError{Key: key, Err: err}
	}
	return url, nil
}
