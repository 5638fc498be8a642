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
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ademuri/spotify-stats/internal/stats"
)

var topSkippedConfig AnalyserConfig
var topSkippedCmd = &cobra.Command{
	Use:   "top-skipped [from (optional)] [to (optional)]",
	Short: "Gets the songs skipped most often",
	Long:  `Counts plays that ended before the track did. Date strings look like 'yyyy', 'yyyy-mm', or 'yyyy-mm-dd'.`,
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printLeaderboard(os.Stdout, afero.NewOsFs(), stats.TopSkipped, topSkippedConfig, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topSkippedCmd)

	addAnalyserFlags(topSkippedCmd, &topSkippedConfig, 10)
}
