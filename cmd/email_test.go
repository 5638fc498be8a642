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
	"strings"
	"testing"
	"time"

	"github.com/ademuri/spotify-stats/internal/stats"
)

func TestParseEmailArgs(t *testing.T) {
	now := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)

	config, err := parseEmailArgs([]string{"me@example.com", "top-songs", "top-albums"}, now)
	if err != nil {
		t.Fatalf("parseEmailArgs: %v", err)
	}
	if config.To != "me@example.com" {
		t.Errorf("To = %q", config.To)
	}
	if len(config.Kinds) != 2 || config.Kinds[0] != stats.TopSongs || config.Kinds[1] != stats.TopAlbums {
		t.Errorf("Kinds = %v", config.Kinds)
	}
	if !config.Start.Equal(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)) || !config.End.Equal(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected the previous month, got %s to %s", config.Start, config.End)
	}
	if len(config.DateArgs) != 1 || config.DateArgs[0] != "2023-02" {
		t.Errorf("DateArgs = %v", config.DateArgs)
	}

	config, err = parseEmailArgs([]string{"me@example.com", "top-artists", "2022-01", "2022-06"}, now)
	if err != nil {
		t.Fatalf("parseEmailArgs: %v", err)
	}
	if len(config.Kinds) != 1 || config.Kinds[0] != stats.TopArtists {
		t.Errorf("Kinds = %v", config.Kinds)
	}
	if !config.Start.Equal(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)) || !config.End.Equal(time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected range %s to %s", config.Start, config.End)
	}
}

func TestParseEmailArgsErrors(t *testing.T) {
	now := time.Now()
	if _, err := parseEmailArgs([]string{"me@example.com", "2022"}, now); err == nil {
		t.Errorf("parseEmailArgs should have errored without leaderboards")
	}
	if _, err := parseEmailArgs([]string{"me@example.com", "new-artists"}, now); err == nil {
		t.Errorf("parseEmailArgs should have errored with an unknown leaderboard")
	}
}

func TestGenerateEmailContent(t *testing.T) {
	fs := createTestExport(t)
	table, err := loadHistory(fs, []string{"2021-03"})
	if err != nil {
		t.Fatalf("loadHistory: %v", err)
	}

	config := SendEmailConfig{
		Kinds:       []stats.Kind{stats.TopSongs, stats.TopSkipped},
		NumToReturn: 10,
		Start:       time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	subject, body, err := generateEmailContent(context.Background(), config, stats.New(table), nil)
	if err != nil {
		t.Fatalf("generateEmailContent: %v", err)
	}

	if subject != "Listening report for 2021-03-01 to 2021-04-01" {
		t.Errorf("Unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "<h2>Top songs for 2021-03-01 to 2021-04-01:</h2>") {
		t.Errorf("Expected top songs heading, got:\n%s", body)
	}
	if !strings.Contains(body, "Come Together") || !strings.Contains(body, "Something") {
		t.Errorf("Expected both March songs, got:\n%s", body)
	}
	if !strings.Contains(body, "<h2>Most skipped songs for 2021-03-01 to 2021-04-01:</h2>\n<div>No listens found.</div>") {
		t.Errorf("Expected an empty skipped section, got:\n%s", body)
	}
}

func TestSendEmailDryRun(t *testing.T) {
	fs := createTestExport(t)

	config := SendEmailConfig{
		To:       "me@example.com",
		Kinds:    []stats.Kind{stats.TopAlbums},
		DateArgs: []string{"2021"},
		DryRun:   true,
	}
	if err := sendEmail(fs, config); err != nil {
		t.Fatalf("sendEmail: %v", err)
	}

	config.DryRun = false
	if err := sendEmail(fs, config); err == nil || !strings.Contains(err.Error(), "sendgrid_api_key") {
		t.Fatalf("sendEmail should have required sendgrid_api_key, got: %v", err)
	}
}
