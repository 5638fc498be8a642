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
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ademuri/spotify-stats/internal/stats"
)

var hoursCmd = &cobra.Command{
	Use:   "hours [from (optional)] [to (optional)]",
	Short: "Prints the total time spent listening",
	Long:  `Includes skipped plays. Date strings look like 'yyyy', 'yyyy-mm', or 'yyyy-mm-dd'.`,
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printHours(os.Stdout, afero.NewOsFs(), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(hoursCmd)
}

func printHours(out io.Writer, fs afero.Fs, args []string) error {
	table, err := loadHistory(fs, args)
	if err != nil {
		return fmt.Errorf("printHours: %w", err)
	}

	summary := stats.Summarize(table)
	fmt.Fprintf(out, "Listened for %s hours (%s days) over %s plays.\n",
		humanize.CommafWithDigits(summary.Hours, 2),
		humanize.CommafWithDigits(summary.Days, 2),
		humanize.Comma(int64(len(table))))
	return nil
}
