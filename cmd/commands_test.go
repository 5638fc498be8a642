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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestEmailRequiresFrom(t *testing.T) {
	viper.Set("from", "")

	err := emailCmd.PreRunE(emailCmd, []string{"me@example.com", "top-songs"})
	if err == nil {
		t.Error("Expected error when from is missing, got nil")
	} else if err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected 'required flag(s) \"from\" not set', got %v", err)
	}

	viper.Set("from", "stats@example.com")
	t.Cleanup(func() { viper.Set("from", "") })
	err = emailCmd.PreRunE(emailCmd, []string{"me@example.com", "top-songs"})
	if err != nil {
		t.Errorf("Expected nil when from is set, got %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"top-songs", "top-albums", "top-artists", "top-skipped", "hours", "serve", "email"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected command %q to be registered, got %v, %v", name, cmd, err)
		}
	}
}

func TestExecuteHours(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := filepath.Join(tmpDir, "endsong_0.json")
	if err := os.WriteFile(exportPath, []byte(testExport), 0644); err != nil {
		t.Fatalf("writing export: %v", err)
	}
	t.Cleanup(func() { viper.Set("history", "") })

	rootCmd.SetArgs([]string{
		"hours",
		"--history", tmpDir,
		"--database", filepath.Join(tmpDir, "test.db"),
		"2021",
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("hours failed: %v", err)
	}
}
