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
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-stats/internal/render"
	"github.com/ademuri/spotify-stats/internal/stats"
)

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int

	// Count plays that were skipped before the end of the track.
	IncludeSkipped bool

	// Look up a cover or artist picture for each result.
	Images bool

	// Render a full HTML page instead of a terminal table.
	HTML bool
}

func (c AnalyserConfig) options() stats.Options {
	return stats.Options{
		Top:            c.NumToReturn,
		ExcludeSkipped: !c.IncludeSkipped,
	}
}

func addAnalyserFlags(cmd *cobra.Command, config *AnalyserConfig, defaultNumber int) {
	cmd.Flags().IntVarP(&config.NumToReturn, "number", "n", defaultNumber, "number of results to return, 0 for all")
	cmd.Flags().BoolVar(&config.IncludeSkipped, "include-skipped", false, "count plays that were skipped")
	cmd.Flags().BoolVar(&config.Images, "images", false, "look up covers and artist pictures")
	cmd.Flags().BoolVar(&config.HTML, "html", false, "print an HTML page instead of a table")
}

// printLeaderboard computes one leaderboard over the configured history,
// restricted to the dates in args, and writes it to out.
func printLeaderboard(out io.Writer, fs afero.Fs, kind stats.Kind, config AnalyserConfig, args []string) error {
	ctx := newContext()
	table, err := loadHistory(fs, args)
	if err != nil {
		return fmt.Errorf("printLeaderboard: %w", err)
	}

	var gw stats.ImageGateway
	if config.Images {
		var closeGateway func()
		gw, closeGateway, err = newGateway(ctx, viper.GetString("database"))
		if err != nil {
			return err
		}
		defer closeGateway()
	}

	return writeLeaderboard(ctx, out, stats.New(table), kind, config, gw)
}

func writeLeaderboard(ctx context.Context, out io.Writer, engine *stats.Engine, kind stats.Kind, config AnalyserConfig, gw stats.ImageGateway) error {
	result, err := engine.Compute(ctx, kind, config.options(), config.Images, gw)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}

	if config.HTML {
		_, err = io.WriteString(out, render.HTML(result.Title(), result))
		return err
	}

	fmt.Fprintf(out, "%s:\n", result.Title())
	if result.Len() == 0 {
		fmt.Fprintln(out, "No listens found.")
		return nil
	}
	return render.Text(out, result)
}

// kindByMetric picks between the play count and listening time variant of a
// leaderboard.
func kindByMetric(by string, frequency, duration stats.Kind) (stats.Kind, error) {
	switch by {
	case "frequency", "plays":
		return frequency, nil
	case "duration", "time":
		return duration, nil
	default:
		return 0, fmt.Errorf("Invalid --by: %q, expected frequency or duration", by)
	}
}
