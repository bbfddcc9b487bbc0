// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota tracks per-provider daily request budgets.
//
// Usage counters persist as JSON at ~/.lilim/usage.json and reset when the
// stored date no longer matches the current day. The ledger serializes all
// reads and writes so concurrent requests can never push a provider past
// its daily limit.
package quota

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lilithlinux/lilim/internal/util"
)

// DateFormat is the day key stored in the usage file.
const DateFormat = "2006-01-02"

// UsageRecord is the persisted shape of one day's counters.
type UsageRecord struct {
	Date string         `json:"date"`
	Used map[string]int `json:"used"`
}

// Store persists usage records to a single JSON file.
type Store struct {
	path string
}

// NewStore creates a store writing to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStorePath returns ~/.lilim/usage.json.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".lilim", "usage.json"), nil
}

// Load reads the persisted record. A missing file is not an error; ok is
// false and the caller starts fresh. A corrupt file is treated the same
// way, with a log line, so a bad write never wedges the router.
func (s *Store) Load() (UsageRecord, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read usage file: %v", err)
		}
		return UsageRecord{}, false
	}

	var rec UsageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("Warning: corrupt usage file, starting fresh: %v", err)
		return UsageRecord{}, false
	}
	if rec.Used == nil {
		rec.Used = make(map[string]int)
	}
	return rec, true
}

// Save writes the record atomically. Saving an unchanged record produces
// byte-identical output, so repeated saves are idempotent.
func (s *Store) Save(rec UsageRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create usage directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	return nil
}

// Today returns the current day key.
func Today() string {
	return time.Now().Format(DateFormat)
}
