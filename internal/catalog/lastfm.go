package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Lastfm looks up artist pictures on last.fm. It has no way to resolve
// Spotify track keys, so it only serves as an ArtistSource.
type Lastfm struct {
	api     *lastfm.Api
	limiter *rate.Limiter
}

var _ ArtistSource = (*Lastfm)(nil)

func NewLastfm(apiKey, secret string) *Lastfm {
	api := lastfm.New(apiKey, secret)
	api.SetUserAgent("spotify-stats/1.0")
	return &Lastfm{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
	}
}

type lastfmImage struct {
	Size string
	URL  string
}

// Preferred sizes, best first.
var lastfmSizes = []string{"extralarge", "large", "mega", "medium", "small"}

func (l *Lastfm) ArtistImage(ctx context.Context, artist string) (string, error) {
	if artist == "" {
		return "", fmt.Errorf("empty artist name: %w", ErrNotFound)
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var info lastfm.ArtistGetInfo
	err := retry.Do(
		func() error {
			var err error
			info, err = l.api.Artist.GetInfo(lastfm.P{
				"artist":      artist,
				"autocorrect": 1,
			})
			return err
		},
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var lerr *lastfm.LastfmError
			if errors.As(err, &lerr) && lerr.Code/100 == 5 {
				zerolog.Ctx(ctx).Warn().Err(lerr).Str("artist", artist).Msg("last.fm errored, retrying")
				return true
			}
			return false
		}),
	)
	if err != nil {
		return "", fmt.Errorf("last.fm artist %q: %w", artist, err)
	}

	images := make([]lastfmImage, 0, len(info.Images))
	for _, img := range info.Images {
		images = append(images, lastfmImage{Size: img.Size, URL: img.Url})
	}
	return pickLastfmImage(images)
}

func pickLastfmImage(images []lastfmImage) (string, error) {
	for _, size := range lastfmSizes {
		for _, img := range images {
			if img.Size == size && img.URL != "" {
				return img.URL, nil
			}
		}
	}
	for _, img := range images {
		if img.URL != "" {
			return img.URL, nil
		}
	}
	return "", ErrNoImage
}
