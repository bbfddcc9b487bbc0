// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/lilithlinux/lilim/internal/cloud"
	"github.com/lilithlinux/lilim/internal/config"
	"github.com/lilithlinux/lilim/internal/index"
	"github.com/lilithlinux/lilim/internal/ollama"
	"github.com/lilithlinux/lilim/internal/quota"
	"github.com/lilithlinux/lilim/internal/router"
)

// App bundles the wired backends behind the command handlers.
type App struct {
	Config  *config.Config
	Engine  *router.Engine
	Ledger  *quota.Ledger
	Index   *index.FileIndex
	Watcher *index.Watcher
	Local   *ollama.Client
}

// BuildApp loads configuration and wires every backend the router needs.
func BuildApp(args Args) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.Model != "" {
		cfg.Local.Model = args.Model
	}
	if args.Quiet {
		log.SetOutput(io.Discard)
	}

	idx, err := index.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open file index: %w", err)
	}

	local := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Local.OllamaURL,
		Model:   cfg.Local.Model,
		Timeout: cfg.Timeouts.Infer(),
	})

	specs := make([]quota.ProviderSpec, 0, len(cfg.Providers))
	providers := make([]router.CloudProvider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		specs = append(specs, quota.ProviderSpec{Name: p.Name, DailyLimit: p.DailyLimit})
		providers = append(providers, cloud.NewClient(p.Name, p.BaseURL, p.APIKey, p.Model))
	}

	storePath, err := quota.DefaultStorePath()
	if err != nil {
		return nil, err
	}
	ledger := quota.NewLedger(specs, quota.NewStore(storePath))

	engine := router.NewEngine(router.Config{
		Domains:       cfg.EnabledDomains(),
		Local:         local,
		Providers:     providers,
		Ledger:        ledger,
		Search:        idx,
		SearchTimeout: cfg.Timeouts.Search(),
		InferTimeout:  cfg.Timeouts.Infer(),
	})

	return &App{
		Config: cfg,
		Engine: engine,
		Ledger: ledger,
		Index:  idx,
		Local:  local,
	}, nil
}

// StartWatcher keeps the file index current for long-lived sessions.
// A zero debounce uses the watcher default. Failure to watch is logged,
// not fatal; searches then rely on explicit rebuilds.
func (a *App) StartWatcher(debounce time.Duration) {
	w, err := index.NewWatcher(a.Index, debounce)
	if err != nil {
		log.Printf("Warning: file watcher unavailable: %v", err)
		return
	}
	a.Watcher = w
}

// Close releases backend resources.
func (a *App) Close() {
	if a.Watcher != nil {
		a.Watcher.Close()
	}
	if a.Index != nil {
		a.Index.Close()
	}
}
