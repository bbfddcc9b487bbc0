// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lilithlinux/lilim/internal/util"
)

// Transcript is the persisted form of one session.
type Transcript struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Saved    time.Time `json:"saved"`
	Messages []Message `json:"messages"`
}

// Store persists transcripts as one JSON file per session.
type Store struct {
	dir string
}

// NewStore creates a transcript store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStoreDir returns ~/.lilim/conversations.
func DefaultStoreDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".lilim", "conversations"), nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, id+".json")
}

// Save writes the session's transcript. Sessions with no messages are
// skipped so abandoned REPLs leave no empty files behind.
func (st *Store) Save(s *Session) error {
	msgs := s.Messages()
	if len(msgs) == 0 {
		return nil
	}

	if err := os.MkdirAll(st.dir, 0700); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}

	tr := Transcript{
		ID:       s.ID(),
		Started:  msgs[0].Timestamp,
		Saved:    time.Now(),
		Messages: msgs,
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := util.AtomicWriteFile(st.path(tr.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// Load reads one transcript by session id.
func (st *Store) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(st.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return &tr, nil
}

// List returns stored session ids, most recently saved first.
func (st *Store) List() ([]string, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	type item struct {
		id  string
		mod time.Time
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{
			id:  strings.TrimSuffix(e.Name(), ".json"),
			mod: info.ModTime(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].mod.After(items[j].mod) })

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids, nil
}

// Delete removes one transcript.
func (st *Store) Delete(id string) error {
	if err := os.Remove(st.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}
