// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"

	"github.com/lilithlinux/lilim/internal/asset"
	"github.com/lilithlinux/lilim/internal/chat"
	"github.com/lilithlinux/lilim/internal/cloud"
	"github.com/lilithlinux/lilim/internal/config"
)

// HandleAsk answers a single query and exits.
func HandleAsk(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return errors.New("usage: lilim ask <query>")
	}

	app, err := BuildApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	session := chat.NewSession(app.Engine)
	reply, err := session.Submit(context.Background(), args.Query)
	if err != nil {
		return err
	}

	printAnswer(newRenderer(), reply)
	return nil
}

// HandleChat runs the interactive REPL.
func HandleChat(args Args) error {
	app, err := BuildApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	// Keep search results current while the session is open.
	app.StartWatcher(0)

	storeDir, err := chat.DefaultStoreDir()
	if err != nil {
		return err
	}
	store := chat.NewStore(storeDir)

	session := chat.NewSession(app.Engine)
	renderer := newRenderer()

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	fmt.Println(titleStyle.Render("Lilim") + " - Lilith Linux assistant (type 'exit' to quit)")

	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			// Ctrl-C or Ctrl-D ends the session.
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		line.AppendHistory(input)

		fmt.Println(prefixStyle.Render(app.Engine.ThinkingLine()))
		reply, err := session.Submit(context.Background(), input)
		if err != nil {
			fmt.Println(errStyle.Render(err.Error()))
			continue
		}
		printAnswer(renderer, reply)
	}

	if err := store.Save(session); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("failed to save transcript: "+err.Error()))
	}
	fmt.Println("Goodbye!")
	return nil
}

// HandleStatus prints provider quotas, backend health, and index state.
func HandleStatus(args Args) error {
	app, err := BuildApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Println(titleStyle.Render("lilim status"))
	fmt.Println()

	// Provider quotas
	fmt.Println(headerStyle.Render("Cloud providers (daily quota)"))
	fmt.Printf("  %s %s %s %s\n",
		pad("PROVIDER", 12), pad("USED", 8), pad("LIMIT", 8), "REMAINING")
	for _, p := range app.Ledger.Usage() {
		state := okStyle
		if p.Remaining() == 0 {
			state = errStyle
		} else if p.Used*2 >= p.DailyLimit {
			state = warnStyle
		}
		fmt.Printf("  %s %s %s %s\n",
			pad(p.Name, 12),
			pad(fmt.Sprint(p.Used), 8),
			pad(fmt.Sprint(p.DailyLimit), 8),
			state.Render(fmt.Sprint(p.Remaining())))
	}
	fmt.Println()

	// Local backend
	fmt.Println(headerStyle.Render("Local model"))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := app.Local.CheckRunning(ctx); err != nil {
		fmt.Printf("  %s %s (%v)\n", pad(app.Config.Local.Model, 20), errStyle.Render("unreachable"), err)
	} else {
		fmt.Printf("  %s %s\n", pad(app.Config.Local.Model, 20), okStyle.Render("ready"))
	}
	fmt.Println()

	// File index
	fmt.Println(headerStyle.Render("File index"))
	stats := app.Index.Stats()
	if stats.FileCount == 0 {
		fmt.Println("  " + warnStyle.Render("empty - run: lilim index rebuild"))
	} else {
		fmt.Printf("  %d files indexed\n", stats.FileCount)
	}
	return nil
}

// pad right-pads s to display width w, truncating long values.
func pad(s string, w int) string {
	s = runewidth.Truncate(s, w, "…")
	return s + strings.Repeat(" ", w-runewidth.StringWidth(s))
}

// HandleModels lists downloadable assets and local Ollama models.
func HandleModels(args Args) error {
	app, err := BuildApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Println(headerStyle.Render("Model catalog"))
	for _, spec := range asset.Catalog() {
		marker := " "
		if spec.Recommended {
			marker = okStyle.Render("*")
		}
		active := ""
		if spec.ID == app.Config.Assets.Active {
			active = valueStyle.Render("  (active)")
		}
		fmt.Printf("%s %s %s RAM, %s download%s\n",
			marker,
			pad(spec.ID, 14),
			pad(formatBytes(spec.RAMUsageBytes), 8),
			formatBytes(spec.DownloadSizeBytes),
			active)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	models, err := app.Local.ListModels(ctx)
	if err != nil {
		fmt.Println(warnStyle.Render("Ollama unreachable; local models unknown"))
		return nil
	}
	fmt.Println(headerStyle.Render("Installed Ollama models"))
	for _, m := range models {
		fmt.Printf("  %s %s\n", pad(m.Name, 24), formatBytes(m.Size))
	}
	return nil
}

// formatBytes renders a byte count as a short human figure.
func formatBytes(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fGB", float64(n)/1e9)
	case n >= 1_000_000:
		return fmt.Sprintf("%dMB", n/1_000_000)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// HandleIndex shows index stats or rebuilds the index.
func HandleIndex(args Args) error {
	app, err := BuildApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	switch args.Subcommand {
	case "", "status":
		stats := app.Index.Stats()
		fmt.Printf("%d files indexed\n", stats.FileCount)
		if !stats.LastIndexed.IsZero() {
			fmt.Printf("last rebuilt %s\n", stats.LastIndexed.Format(time.RFC1123))
		}
		return nil

	case "rebuild":
		fmt.Println("Rebuilding file index...")
		start := time.Now()
		if err := app.Index.Rebuild(context.Background()); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		stats := app.Index.Stats()
		fmt.Println(prefixStyle.Render(app.Engine.CompletionLine()))
		fmt.Printf("%s %d files in %v\n",
			okStyle.Render("Indexed"), stats.FileCount, time.Since(start).Round(time.Millisecond))
		return nil

	default:
		return fmt.Errorf("unknown index subcommand %q", args.Subcommand)
	}
}

// HandleConfig reads or writes configuration values.
func HandleConfig(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "get":
		if args.ConfigKey == "" {
			return errors.New("usage: lilim config get <key>")
		}
		val, err := configGet(cfg, args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return errors.New("usage: lilim config set <key> <value>")
		}
		if err := configSet(cfg, args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if err := cfg.SaveTOML(dir); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		return nil

	default:
		return errors.New("usage: lilim config <get|set> <key> [value]")
	}
}

func configGet(cfg *config.Config, key string) (string, error) {
	switch key {
	case "local.model":
		return cfg.Local.Model, nil
	case "local.ollama_url":
		return cfg.Local.OllamaURL, nil
	case "assets.active":
		return cfg.Assets.Active, nil
	case "domains":
		return strings.Join(cfg.Domains, ","), nil
	}
	if name, ok := strings.CutSuffix(key, ".api_key"); ok {
		if p, found := cfg.Provider(strings.TrimPrefix(name, "providers.")); found {
			return cloud.MaskKey(p.APIKey), nil
		}
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

func configSet(cfg *config.Config, key, value string) error {
	switch key {
	case "local.model":
		cfg.Local.Model = value
		return nil
	case "local.ollama_url":
		cfg.Local.OllamaURL = value
		return nil
	case "assets.active":
		cfg.Assets.Active = value
		return nil
	case "domains":
		cfg.Domains = strings.Split(value, ",")
		for i := range cfg.Domains {
			cfg.Domains[i] = strings.TrimSpace(cfg.Domains[i])
		}
		return nil
	}
	if name, ok := strings.CutSuffix(key, ".api_key"); ok {
		name = strings.TrimPrefix(name, "providers.")
		for i := range cfg.Providers {
			if cfg.Providers[i].Name == name {
				cfg.Providers[i].APIKey = value
				return nil
			}
		}
	}
	return fmt.Errorf("unknown config key %q", key)
}

// HandleSetup writes a default config if none exists and points at the
// interactive installer.
func HandleSetup(args Args) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Default().SaveTOML(dir); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", okStyle.Render("Wrote"), path)
	} else {
		fmt.Printf("Config already present at %s\n", path)
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  lilim-setup                      interactive model download")
	fmt.Println("  lilim config set providers.groq.api_key <key>")
	fmt.Println("  lilim index rebuild")
	return nil
}
