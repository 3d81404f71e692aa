package main

import (
	"testing"
)

func TestServeCmdFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantConfig string
		wantLevel  string
	}{
		{
			name:       "with config flag",
			args:       []string{"--config", "test.toml"},
			wantConfig: "test.toml",
			wantLevel:  "",
		},
		{
			name:       "with log level flag",
			args:       []string{"--log-level", "debug"},
			wantConfig: "",
			wantLevel:  "debug",
		},
		{
			name:       "short flags",
			args:       []string{"-c", "test.toml", "-l", "warn"},
			wantConfig: "test.toml",
			wantLevel:  "warn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags
			serveConfigPath = ""
			serveLogLevel = ""

			serveCmd.SetArgs(tt.args)
			_ = serveCmd.ParseFlags(tt.args)

			if serveConfigPath != tt.wantConfig {
				t.Errorf("serveConfigPath = %v, want %v", serveConfigPath, tt.wantConfig)
			}
			if serveLogLevel != tt.wantLevel {
				t.Errorf("serveLogLevel = %v, want %v", serveLogLevel, tt.wantLevel)
			}
		})
	}
}

func TestCommandStructure(t *testing.T) {
	want := map[string]bool{
		"version":  false,
		"config":   false,
		"serve":    false,
		"schedule": false,
		"test":     false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("Subcommand %q is not registered", name)
		}
	}
}

func TestScheduleSubcommands(t *testing.T) {
	want := map[string]bool{
		"add":    false,
		"list":   false,
		"remove": false,
	}

	for _, cmd := range scheduleCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("Schedule subcommand %q is not registered", name)
		}
	}
}
