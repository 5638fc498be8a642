package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ademuri/spotify-stats/internal/stats"
)

const (
	SpotifyAPIURL   = "https://api.spotify.com/v1"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
)

// Spotify looks up covers and artist pictures with the Spotify Web API.
type Spotify struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	attempts   uint
	delay      time.Duration
}

var _ stats.ImageGateway = (*Spotify)(nil)

// NewSpotify returns a client authenticated with the client credentials flow.
// The token is fetched lazily and refreshed as needed.
func NewSpotify(ctx context.Context, clientID, clientSecret string) *Spotify {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     SpotifyTokenURL,
	}
	return NewSpotifyWithClient(conf.Client(ctx), SpotifyAPIURL)
}

// NewSpotifyWithClient talks to baseURL through httpClient, which must add
// authorization itself.
func NewSpotifyWithClient(httpClient *http.Client, baseURL string) *Spotify {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Spotify{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		attempts:   defaultAttempts,
		delay:      defaultDelay,
	}
}

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyTrack struct {
	Album struct {
		Images []spotifyImage `json:"images"`
	} `json:"album"`
}

type spotifyArtist struct {
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyArtistSearch struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

// TrackCover returns the medium sized album cover of a track. trackKey is a
// Spotify URI, open.spotify.com link or bare track ID.
func (s *Spotify) TrackCover(ctx context.Context, trackKey string) (string, error) {
	id, err := spotifyTrackID(trackKey)
	if err != nil {
		return "", err
	}

	var track spotifyTrack
	if err := s.get(ctx, "/tracks/"+url.PathEscape(id), nil, &track); err != nil {
		return "", fmt.Errorf("spotify track %s: %w", id, err)
	}
	return pickImage(track.Album.Images)
}

// ArtistImage searches for the artist and returns its medium sized picture.
// An exact name match is preferred over the first search result.
func (s *Spotify) ArtistImage(ctx context.Context, artist string) (string, error) {
	if artist == "" {
		return "", fmt.Errorf("empty artist name: %w", ErrNotFound)
	}

	query := url.Values{}
	query.Set("q", "artist:"+artist)
	query.Set("type", "artist")
	query.Set("limit", "5")

	var result spotifyArtistSearch
	if err := s.get(ctx, "/search", query, &result); err != nil {
		return "", fmt.Errorf("spotify artist %q: %w", artist, err)
	}

	items := result.Artists.Items
	if len(items) == 0 {
		return "", fmt.Errorf("spotify artist %q: %w", artist, ErrNotFound)
	}
	best := items[0]
	for _, item := range items {
		if strings.EqualFold(item.Name, artist) {
			best = item
			break
		}
	}
	return pickImage(best.Images)
}

// pickImage returns the second image, the medium size in Spotify's largest
// first ordering, or the only one there is.
func pickImage(images []spotifyImage) (string, error) {
	switch len(images) {
	case 0:
		return "", ErrNoImage
	case 1:
		return images[0].URL, nil
	default:
		return images[1].URL, nil
	}
}

func spotifyTrackID(key string) (string, error) {
	key = strings.TrimSpace(key)
	switch {
	case strings.HasPrefix(key, "spotify:track:"):
		key = strings.TrimPrefix(key, "spotify:track:")
	case strings.Contains(key, "open.spotify.com/track/"):
		u, err := url.Parse(key)
		if err != nil {
			return "", fmt.Errorf("parsing track link %q: %w", key, err)
		}
		key = strings.TrimPrefix(u.Path, "/track/")
	}
	if key == "" || strings.ContainsAny(key, ":/") {
		return "", fmt.Errorf("invalid spotify track key %q: %w", key, ErrNotFound)
	}
	return key, nil
}

func (s *Spotify) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return retry.Do(
		func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := s.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return ErrNotFound
			case resp.StatusCode != http.StatusOK:
				return &StatusError{StatusCode: resp.StatusCode}
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable(ctx)),
		retry.OnRetry(func(n uint, err error) {
			zerolog.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Str("url", u).Msg("spotify errored, retrying")
		}),
	)
}

// retryable reports whether a failed request is worth repeating: rate
// limiting, server errors and transport errors are.
func retryable(ctx context.Context) func(error) bool {
	return func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode/100 == 5
		}
		var urlErr *url.Error
		return errors.As(err, &urlErr)
	}
}
