// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package asset manages downloadable local model assets.
//
// Downloads are simulated: progress advances in fixed percentage steps on a
// timer until the asset is installed. Requesting a download that is already
// running or finished is a no-op, so the UI can fire requests freely.
package asset

import (
	"fmt"
	"sync"
	"time"
)

// ============================================================================
// TYPES
// ============================================================================

// State is an asset's lifecycle stage.
type State int

const (
	StateNotInstalled State = iota
	StateDownloading
	StateInstalled
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotInstalled:
		return "not-installed"
	case StateDownloading:
		return "downloading"
	case StateInstalled:
		return "installed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Spec describes one downloadable model.
type Spec struct {
	ID                string
	Name              string
	RAMUsageBytes     int64
	DownloadSizeBytes int64
	Recommended       bool
}

// Status is a point-in-time view of one asset.
type Status struct {
	ID       string
	State    State
	Progress int // 0-100
}

// Config tunes the simulated download.
type Config struct {
	// StepPercent is how much progress advances per tick. Defaults to 10.
	StepPercent int
	// StepInterval is the delay between ticks. Zero runs the steps
	// back to back, which tests rely on.
	StepInterval time.Duration
	// OnProgress, if set, is called after every step with a snapshot.
	// Called from the download goroutine.
	OnProgress func(Status)
}

// ============================================================================
// CATALOG
// ============================================================================

// Catalog returns the built-in model catalog in display order.
func Catalog() []Spec {
	return []Spec{
		{ID: "tinyllama-1b", Name: "TinyLlama 1.1B", RAMUsageBytes: 1_500_000_000, DownloadSizeBytes: 800_000_000},
		{ID: "phi-2-3b", Name: "Phi-2 2.7B", RAMUsageBytes: 2_000_000_000, DownloadSizeBytes: 1_600_000_000},
		{ID: "llama-2-7b", Name: "Llama 2 7B", RAMUsageBytes: 4_000_000_000, DownloadSizeBytes: 3_800_000_000, Recommended: true},
		{ID: "llama-2-13b", Name: "Llama 2 13B", RAMUsageBytes: 7_000_000_000, DownloadSizeBytes: 7_400_000_000},
	}
}

// ============================================================================
// MANAGER
// ============================================================================

// Manager tracks asset state and runs simulated downloads. Safe for
// concurrent use. Each asset has at most one download goroutine at a time.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	specs  map[string]Spec
	order  []string
	status map[string]*Status
}

// NewManager creates a manager over the given catalog.
func NewManager(specs []Spec, cfg Config) *Manager {
	if cfg.StepPercent <= 0 || cfg.StepPercent > 100 {
		cfg.StepPercent = 10
	}
	m := &Manager{
		cfg:    cfg,
		specs:  make(map[string]Spec, len(specs)),
		status: make(map[string]*Status, len(specs)),
	}
	for _, s := range specs {
		m.specs[s.ID] = s
		m.order = append(m.order, s.ID)
		m.status[s.ID] = &Status{ID: s.ID, State: StateNotInstalled}
	}
	return m
}

// Spec returns the catalog entry for id.
func (m *Manager) Spec(id string) (Spec, bool) {
	s, ok := m.specs[id]
	return s, ok
}

// Progress returns the current status of one asset.
func (m *Manager) Progress(id string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.status[id]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

// All returns every asset's status in catalog order.
func (m *Manager) All() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Status, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.status[id])
	}
	return out
}

// RequestDownload starts a simulated download for id. Requests for an
// asset that is already downloading or installed do nothing and return
// nil, so the call is idempotent. Unknown ids are an error.
func (m *Manager) RequestDownload(id string) error {
	m.mu.Lock()
	st, ok := m.status[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown asset %q", id)
	}
	if st.State != StateNotInstalled {
		m.mu.Unlock()
		return nil
	}
	st.State = StateDownloading
	st.Progress = 0
	m.mu.Unlock()

	go m.run(id)
	return nil
}

// run advances progress until installed. Exactly one per downloading asset.
// The first update reports progress 0 before any step lands.
func (m *Manager) run(id string) {
	m.mu.Lock()
	snap := *m.status[id]
	m.mu.Unlock()
	if m.cfg.OnProgress != nil {
		m.cfg.OnProgress(snap)
	}

	for {
		if m.cfg.StepInterval > 0 {
			time.Sleep(m.cfg.StepInterval)
		}

		m.mu.Lock()
		st := m.status[id]
		st.Progress += m.cfg.StepPercent
		if st.Progress >= 100 {
			st.Progress = 100
			st.State = StateInstalled
		}
		snap := *st
		m.mu.Unlock()

		if m.cfg.OnProgress != nil {
			m.cfg.OnProgress(snap)
		}
		if snap.State == StateInstalled {
			return
		}
	}
}
