// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/lilithlinux/lilim/internal/config"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args defaults to chat", nil, CmdChat},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"status", []string{"status"}, CmdStatus},
		{"status short", []string{"s"}, CmdStatus},
		{"models", []string{"models"}, CmdModels},
		{"index", []string{"index"}, CmdIndex},
		{"config", []string{"config", "get", "local.model"}, CmdConfig},
		{"setup", []string{"setup"}, CmdSetup},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"bare query becomes ask", []string{"how", "do", "i", "mount", "a", "disk"}, CmdAsk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parse(tt.argv)
			if cmd != tt.want {
				t.Errorf("parse(%v) = %v, want %v", tt.argv, cmd, tt.want)
			}
		})
	}
}

func TestParseAskJoinsQuery(t *testing.T) {
	_, args := parse([]string{"ask", "find", "my", "resume"})
	if args.Query != "find my resume" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseBareQueryKeepsAllWords(t *testing.T) {
	_, args := parse([]string{"how", "do", "i", "mount", "a", "disk"})
	if args.Query != "how do i mount a disk" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := parse([]string{"-q", "--model", "llama3:8b", "ask", "hi"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.Quiet || args.Model != "llama3:8b" {
		t.Errorf("args = %+v", args)
	}

	_, args = parse([]string{"--model=phi3:mini", "status"})
	if args.Model != "phi3:mini" {
		t.Errorf("model = %q", args.Model)
	}
}

func TestParseConfigArgs(t *testing.T) {
	_, args := parse([]string{"config", "set", "local.model", "phi3:mini"})
	if args.Subcommand != "set" || args.ConfigKey != "local.model" || args.ConfigVal != "phi3:mini" {
		t.Errorf("args = %+v", args)
	}
}

func TestParseIndexSubcommand(t *testing.T) {
	_, args := parse([]string{"index", "rebuild"})
	if args.Subcommand != "rebuild" {
		t.Errorf("subcommand = %q", args.Subcommand)
	}
}

func TestConfigGetSet(t *testing.T) {
	cfg := config.Default()

	if err := configSet(cfg, "local.model", "mistral:7b"); err != nil {
		t.Fatal(err)
	}
	got, err := configGet(cfg, "local.model")
	if err != nil || got != "mistral:7b" {
		t.Errorf("configGet = (%q, %v)", got, err)
	}

	if err := configSet(cfg, "providers.groq.api_key", "gsk_secret_9876"); err != nil {
		t.Fatal(err)
	}
	got, err = configGet(cfg, "providers.groq.api_key")
	if err != nil {
		t.Fatal(err)
	}
	if got != "****9876" {
		t.Errorf("api key shown as %q, want masked", got)
	}

	// Short keys stay fully hidden rather than echoing back.
	if err := configSet(cfg, "providers.groq.api_key", "1234"); err != nil {
		t.Fatal(err)
	}
	got, err = configGet(cfg, "providers.groq.api_key")
	if err != nil || got != "****" {
		t.Errorf("short api key shown as (%q, %v), want \"****\"", got, err)
	}

	if err := configSet(cfg, "domains", "research, writing"); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Domains) != 2 || cfg.Domains[1] != "writing" {
		t.Errorf("domains = %v", cfg.Domains)
	}

	if _, err := configGet(cfg, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := configSet(cfg, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestPad(t *testing.T) {
	if got := pad("abc", 6); got != "abc   " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdefgh", 5); len([]rune(got)) != 5 {
		t.Errorf("pad did not truncate: %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{800_000_000, "800MB"},
		{1_500_000_000, "1.5GB"},
		{7_400_000_000, "7.4GB"},
		{512, "512B"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
