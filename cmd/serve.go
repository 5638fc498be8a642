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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-stats/internal/server"
	"github.com/ademuri/spotify-stats/internal/stats"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the leaderboards as web pages",
	Long: `Loads the streaming history once and serves /top-songs, /top-albums and the
other leaderboards. Covers are looked up when client_id and client_secret are set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := serve()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "localhost:5000", "address to listen on")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))

	serveCmd.Flags().Duration("page_cache", server.DefaultCacheTTL, "how long rendered pages are reused, 0 disables")
	viper.BindPFlag("page_cache", serveCmd.Flags().Lookup("page_cache"))

	serveCmd.Flags().Bool("degrade_images", false, "render rows without an image when the lookup fails")
	viper.BindPFlag("degrade_images", serveCmd.Flags().Lookup("degrade_images"))

	serveCmd.Flags().Int("rate_limit", 0, "requests per minute per client, 0 is unlimited")
	viper.BindPFlag("rate_limit", serveCmd.Flags().Lookup("rate_limit"))
}

func serve() error {
	ctx, stop := signal.NotifyContext(newContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := zerolog.Ctx(ctx)

	table, err := loadHistory(afero.NewOsFs(), nil)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info().Int("events", len(table)).Msg("loaded streaming history")

	var gw stats.ImageGateway
	if viper.GetString("client_id") != "" {
		var closeGateway func()
		gw, closeGateway, err = newGateway(ctx, viper.GetString("database"))
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer closeGateway()
	} else {
		logger.Warn().Msg("client_id not set, serving pages without images")
	}

	s := server.New(table, gw, server.Config{
		CacheTTL:          viper.GetDuration("page_cache"),
		DegradeImages:     viper.GetBool("degrade_images"),
		RequestsPerMinute: viper.GetInt("rate_limit"),
	})
	httpServer := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           s.Router(*logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", httpServer.Addr).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
