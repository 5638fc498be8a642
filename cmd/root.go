/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-stats/internal/catalog"
	"github.com/ademuri/spotify-stats/internal/history"
	"github.com/ademuri/spotify-stats/internal/stats"
	"github.com/ademuri/spotify-stats/internal/store"
)

var cfgFile string
var historyPath string
var databasePath string
var clientID string
var clientSecret string
var lastFmApiKey string
var lastFmSecret string
var artistImages string
var cacheTTL time.Duration
var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spotify-stats",
	Short: "Computes leaderboards from a Spotify streaming history export",
	Long: `Reads the streaming history from a Spotify data export and ranks the
songs, albums and artists in it, optionally with cover art.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.spotify-stats.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&historyPath, "history", "H", "", "Streaming history export: a directory of endsong_*.json files, or one .json/.csv file")
	viper.BindPFlag("history", rootCmd.PersistentFlags().Lookup("history"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./spotify-stats.db", "Path to the SQLite image cache")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(&clientID, "client_id", "", "Spotify client ID")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))

	rootCmd.PersistentFlags().StringVar(&clientSecret, "client_secret", "", "Spotify client secret")
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))

	rootCmd.PersistentFlags().StringVar(&lastFmApiKey, "lastfm_api_key", "", "last.fm API key")
	viper.BindPFlag("lastfm_api_key", rootCmd.PersistentFlags().Lookup("lastfm_api_key"))

	rootCmd.PersistentFlags().StringVar(&lastFmSecret, "lastfm_secret", "", "last.fm secret")
	viper.BindPFlag("lastfm_secret", rootCmd.PersistentFlags().Lookup("lastfm_secret"))

	rootCmd.PersistentFlags().StringVar(
		&artistImages, "artist_images", "spotify", "Where to look up artist pictures: spotify or lastfm")
	viper.BindPFlag("artist_images", rootCmd.PersistentFlags().Lookup("artist_images"))

	rootCmd.PersistentFlags().DurationVar(
		&cacheTTL, "cache_ttl", 30*24*time.Hour, "How long looked up images are kept, 0 keeps them forever")
	viper.BindPFlag("cache_ttl", rootCmd.PersistentFlags().Lookup("cache_ttl"))

	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".spotify-stats" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".spotify-stats")
	}

	viper.SetEnvPrefix("SPOTIFY_STATS")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// newContext returns a context carrying a logger configured from log_level.
func newContext() context.Context {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("log_level")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// loadHistory reads the export named by the history setting and restricts it
// to the date range in args, if any.
func loadHistory(fs afero.Fs, args []string) (history.Table, error) {
	path := viper.GetString("history")
	if path == "" {
		return nil, fmt.Errorf("required flag(s) \"history\" not set")
	}

	table, err := history.Load(fs, path)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return table, nil
	}
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return nil, err
	}
	return table.Between(start, end), nil
}

// newGateway builds the image gateway from the catalog settings. The returned
// close function releases the image cache.
func newGateway(ctx context.Context, dbPath string) (stats.ImageGateway, func(), error) {
	id, secret := viper.GetString("client_id"), viper.GetString("client_secret")
	if id == "" || secret == "" {
		return nil, nil, fmt.Errorf("client_id and client_secret must be set in order to look up images")
	}
	spotify := catalog.NewSpotify(ctx, id, secret)

	split := catalog.Split{Covers: spotify, Artists: spotify}
	switch source := viper.GetString("artist_images"); source {
	case "", "spotify":
	case "lastfm":
		key, lfmSecret := viper.GetString("lastfm_api_key"), viper.GetString("lastfm_secret")
		if key == "" || lfmSecret == "" {
			return nil, nil, fmt.Errorf("lastfm_api_key and lastfm_secret must be set for artist_images=lastfm")
		}
		split.Artists = catalog.NewLastfm(key, lfmSecret)
	default:
		return nil, nil, fmt.Errorf("Invalid artist_images: %q", source)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("newGateway: %w", err)
	}
	ttl := viper.GetDuration("cache_ttl")
	if ttl > 0 {
		pruned, err := db.PruneImages(time.Now().Add(-ttl))
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("pruning image cache")
		} else if pruned > 0 {
			zerolog.Ctx(ctx).Debug().Int64("pruned", pruned).Msg("pruned image cache")
		}
	}
	return catalog.NewCached(split, db, ttl), func() { db.Close() }, nil
}
