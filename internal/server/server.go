// Package server serves leaderboards as HTML pages.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/ademuri/spotify-stats/internal/history"
	"github.com/ademuri/spotify-stats/internal/render"
	"github.com/ademuri/spotify-stats/internal/stats"
)

//go:embed static
var staticFiles embed.FS

// DefaultCacheTTL is how long a rendered page is served from memory.
const DefaultCacheTTL = 60 * time.Second

type Config struct {
	// CacheTTL of zero disables the page cache.
	CacheTTL time.Duration

	// DegradeImages renders rows whose image lookup failed without an image.
	DegradeImages bool

	// RequestsPerMinute limits each client address. Zero is unlimited.
	RequestsPerMinute int

	// Registry receives the server's metrics and is exposed on /metrics.
	// A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// page describes the defaults of one leaderboard route.
type page struct {
	kind   stats.Kind
	top    int
	images bool
}

var pages = []page{
	{kind: stats.TopSongs, top: 10, images: true},
	{kind: stats.TopSongsByDuration, top: 10},
	{kind: stats.TopAlbums, top: 3, images: true},
	{kind: stats.TopArtists, top: 10},
	{kind: stats.TopArtistsByPlays, top: 10},
	{kind: stats.TopSkipped, top: 10},
}

type Server struct {
	engine  *stats.Engine
	summary stats.Summary
	gateway stats.ImageGateway
	config  Config
	cache   *pageCache
	metrics *metrics
}

// New serves leaderboards over table. gw may be nil, in which case pages
// are rendered without images.
func New(table history.Table, gw stats.ImageGateway, config Config) *Server {
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	return &Server{
		engine:  stats.New(table),
		summary: stats.Summarize(table),
		gateway: gw,
		config:  config,
		cache:   newPageCache(config.CacheTTL),
		metrics: newMetrics(config.Registry),
	}
}

// Router returns the HTTP handler. Requests are logged to logger.
func (s *Server) Router(logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(
		hlog.NewHandler(logger),
		hlog.AccessHandler(accessLog),
	)
	r.Use(middleware.Recoverer)
	if s.config.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.config.RequestsPerMinute, time.Minute))
	}

	for _, p := range pages {
		r.Get("/"+p.kind.String(), s.leaderboardHandler(p))
	}
	r.Get("/hours", s.cached("hours", s.hoursPage))
	r.Get("/", s.indexPage)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("")
}

// renderFunc renders a page body for a request.
type renderFunc func(r *http.Request) ([]byte, error)

// cached serves name's pages from the page cache, rendering them with fn
// when missing.
func (s *Server) cached(name string, fn renderFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.Query().Encode()
		body, ok := s.cache.get(key)
		if ok {
			s.metrics.cacheHits.WithLabelValues(name).Inc()
		} else {
			var err error
			body, err = fn(r)
			if err != nil {
				s.fail(w, r, name, err)
				return
			}
			s.metrics.renders.WithLabelValues(name).Inc()
			s.cache.put(key, body)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if s.config.CacheTTL > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.config.CacheTTL.Seconds())))
		}
		w.Write(body)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	status, cause := http.StatusInternalServerError, "internal"
	var gwErr *stats.GatewayError
	switch {
	case errors.Is(err, stats.ErrInvalidArgument):
		status, cause = http.StatusBadRequest, "invalid_argument"
	case errors.As(err, &gwErr):
		status, cause = http.StatusBadGateway, "gateway"
	case errors.Is(err, context.Canceled):
		cause = "canceled"
	}
	s.metrics.errors.WithLabelValues(name, cause).Inc()
	hlog.FromRequest(r).Error().Err(err).Str("page", name).Msg("rendering page")
	http.Error(w, err.Error(), status)
}

func (s *Server) leaderboardHandler(p page) http.HandlerFunc {
	return s.cached(p.kind.String(), func(r *http.Request) ([]byte, error) {
		opts := stats.Options{
			Top:            p.top,
			ExcludeSkipped: true,
			DegradeImages:  s.config.DegradeImages,
		}
		images := p.images

		query := r.URL.Query()
		var err error
		if v := query.Get("n"); v != "" {
			if opts.Top, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("parameter n=%q: %w", v, stats.ErrInvalidArgument)
			}
		}
		if v := query.Get("images"); v != "" {
			if images, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("parameter images=%q: %w", v, stats.ErrInvalidArgument)
			}
		}
		if v := query.Get("include_skipped"); v != "" {
			include, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("parameter include_skipped=%q: %w", v, stats.ErrInvalidArgument)
			}
			opts.ExcludeSkipped = !include
		}

		table, err := s.engine.Compute(r.Context(), p.kind, opts, images, s.gateway)
		if err != nil {
			return nil, err
		}
		return []byte(render.HTML(p.kind.Title(), table)), nil
	})
}

func (s *Server) hoursPage(r *http.Request) ([]byte, error) {
	body := fmt.Sprintf(`<html>
  <head>
    <meta charset="utf-8">
    <link rel="stylesheet" type="text/css" href="%s">
  </head>
  <body>
    <h1>Time listened</h1>
    <p>%s hours, or %s days.</p>
  </body>
</html>
`, render.Stylesheet, humanize.CommafWithDigits(s.summary.Hours, 2), humanize.CommafWithDigits(s.summary.Days, 2))
	return []byte(body), nil
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html>
  <head>
    <meta charset="utf-8">
    <link rel="stylesheet" type="text/css" href="%s">
  </head>
  <body>
    <ul>
`, render.Stylesheet)
	for _, p := range pages {
		fmt.Fprintf(w, "      <li><a href=\"/%s\">%s</a></li>\n", p.kind, p.kind.Title())
	}
	fmt.Fprint(w, `      <li><a href="/hours">Time listened</a></li>
    </ul>
  </body>
</html>
`)
}
