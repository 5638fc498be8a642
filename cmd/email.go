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

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-stats/internal/render"
	"github.com/ademuri/spotify-stats/internal/stats"
)

type SendEmailConfig struct {
	From           string
	To             string
	Kinds          []stats.Kind
	NumToReturn    int
	Images         bool
	DryRun         bool
	SendgridAPIKey string
	DateArgs       []string
	Start          time.Time
	End            time.Time
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <leaderboard...> [date] [date]",
	Short: "Sends an email report",
	Long: `Emails leaderboards to the specified address.
  <leaderboard> is one or more of: top-songs, top-songs-duration, top-albums, top-artists, top-artists-plays, top-skipped.
  Optional date arguments can be provided at the end (e.g. '2023-01' or '2023-01 2023-06').
  If no dates are provided, defaults to the previous month.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config, err := parseEmailArgs(args, time.Now())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		config.From = viper.GetString("from")
		config.NumToReturn = viper.GetInt("email_number")
		config.Images = viper.GetBool("email_images")
		config.DryRun = viper.GetBool("dryRun")
		config.SendgridAPIKey = viper.GetString("sendgrid_api_key")

		err = sendEmail(afero.NewOsFs(), config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().Int("number", 10, "number of results per leaderboard")
	viper.BindPFlag("email_number", emailCmd.Flags().Lookup("number"))

	emailCmd.Flags().Bool("images", false, "include covers and artist pictures")
	viper.BindPFlag("email_images", emailCmd.Flags().Lookup("images"))

	emailCmd.Flags().String("from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	emailCmd.Flags().String("sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))
}

// parseEmailArgs splits <address> <leaderboard...> [date] [date]. Without
// dates the report covers the month before now.
func parseEmailArgs(args []string, now time.Time) (config SendEmailConfig, err error) {
	config.To = args[0]
	rest := args[1:]

	// Try to parse dates from the end of the args
	for i := 0; i < 2 && len(rest) > 0; i++ {
		if _, err := parseSingleDatestring(rest[len(rest)-1]); err != nil {
			break
		}
		config.DateArgs = append([]string{rest[len(rest)-1]}, config.DateArgs...)
		rest = rest[:len(rest)-1]
	}

	if len(rest) == 0 {
		err = fmt.Errorf("No leaderboards specified")
		return
	}
	for _, name := range rest {
		kind, kindErr := stats.ParseKind(name)
		if kindErr != nil {
			err = fmt.Errorf("Invalid leaderboard: %s", name)
			return
		}
		config.Kinds = append(config.Kinds, kind)
	}

	if len(config.DateArgs) > 0 {
		config.Start, config.End, err = parseDateRangeFromArgs(config.DateArgs)
		if err != nil {
			err = fmt.Errorf("Error parsing dates: %w", err)
		}
		return
	}

	// Default to last month
	config.Start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	config.End = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	config.DateArgs = []string{config.Start.Format("2006-01")}
	return
}

func sendEmail(fs afero.Fs, config SendEmailConfig) error {
	ctx := newContext()
	table, err := loadHistory(fs, config.DateArgs)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
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

	subject, out, err := generateEmailContent(ctx, config, stats.New(table), gw)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if config.SendgridAPIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}
	from := mail.NewEmail("spotify-stats", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, out)
	client := sendgrid.NewSendClient(config.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: sendgrid returned %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func generateEmailContent(ctx context.Context, config SendEmailConfig, engine *stats.Engine, gw stats.ImageGateway) (subject string, body string, err error) {
	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
img {
  width: 100px;
}
</style>
  </head>
  <body>
`)
	dates := fmt.Sprintf("%s to %s", config.Start.Format("2006-01-02"), config.End.Format("2006-01-02"))
	opts := stats.Options{Top: config.NumToReturn, ExcludeSkipped: true, DegradeImages: true}
	for _, kind := range config.Kinds {
		result, err := engine.Compute(ctx, kind, opts, config.Images, gw)
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", kind, err)
		}

		out.WriteString("<div>\n")
		fmt.Fprintf(&out, "<h2>%s for %s:</h2>\n", result.Title(), dates)
		out.WriteString(render.Fragment(result))
		out.WriteString("</div>\n")
	}
	out.WriteString(`  </body>
</html>
`)

	subject = fmt.Sprintf("Listening report for %s", dates)
	return subject, out.String(), nil
}
