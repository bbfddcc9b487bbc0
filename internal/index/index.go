// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides a locate-style filename index for fast file search.
//
// Paths under the configured roots are scanned into a SQLite database at
// ~/.lilim/locate.db. Search matches filename substrings, one LIKE clause
// per term, all of which must hit.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotIndexed = errors.New("filesystem not indexed")
	ErrIndexing   = errors.New("indexing in progress")
)

// =============================================================================
// FILE INDEX
// =============================================================================

// FileIndex indexes filenames for substring search.
type FileIndex struct {
	db     *sql.DB
	config *Config
	mu     sync.RWMutex

	indexing    bool
	indexingMu  sync.Mutex
	lastIndexed time.Time
	fileCount   int
}

// Config holds index configuration.
type Config struct {
	// Roots are the directories to scan.
	Roots []string

	// DatabasePath is where to store the SQLite database.
	DatabasePath string

	// IgnoreNames are directory or file basenames skipped during the scan.
	IgnoreNames []string
}

// DefaultConfig returns default configuration rooted at the user home.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &Config{
		Roots:        []string{home},
		DatabasePath: filepath.Join(home, ".lilim", "locate.db"),
		IgnoreNames: []string{
			".git", ".svn", ".hg",
			"node_modules", "__pycache__", ".venv", "venv",
			"vendor", "target", "dist", "build",
			".cache", ".local", ".lilim",
		},
	}, nil
}

// New opens (creating if needed) the index database.
func New(config *Config) (*FileIndex, error) {
	if config == nil {
		var err error
		config, err = DefaultConfig()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(config.DatabasePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	idx := &FileIndex{db: db, config: config}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := idx.loadStats(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *FileIndex) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS files (
	path  TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	mtime INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_name ON files(name);
`
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (idx *FileIndex) loadStats() error {
	row := idx.db.QueryRow(`SELECT COUNT(*) FROM files`)
	if err := row.Scan(&idx.fileCount); err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (idx *FileIndex) Close() error {
	return idx.db.Close()
}

// =============================================================================
// INDEXING
// =============================================================================

// Rebuild rescans all roots from scratch. Only one rebuild runs at a time;
// a second caller gets ErrIndexing.
func (idx *FileIndex) Rebuild(ctx context.Context) error {
	idx.indexingMu.Lock()
	if idx.indexing {
		idx.indexingMu.Unlock()
		return ErrIndexing
	}
	idx.indexing = true
	idx.indexingMu.Unlock()

	defer func() {
		idx.indexingMu.Lock()
		idx.indexing = false
		idx.indexingMu.Unlock()
	}()

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO files (path, name, mtime) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, root := range idx.config.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable entries are skipped, not fatal
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if idx.shouldIgnore(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if _, err := stmt.Exec(path, d.Name(), info.ModTime().Unix()); err != nil {
				return fmt.Errorf("failed to insert %s: %w", path, err)
			}
			count++
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}

	idx.mu.Lock()
	idx.fileCount = count
	idx.lastIndexed = time.Now()
	idx.mu.Unlock()
	return nil
}

// Update inserts or refreshes a single path, used by the watcher.
func (idx *FileIndex) Update(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx.Remove(path)
		}
		return nil
	}
	if info.IsDir() || idx.shouldIgnore(filepath.Base(path)) {
		return nil
	}
	_, err = idx.db.Exec(`INSERT OR REPLACE INTO files (path, name, mtime) VALUES (?, ?, ?)`,
		path, filepath.Base(path), info.ModTime().Unix())
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	idx.refreshCount()
	return nil
}

// Remove drops a path from the index.
func (idx *FileIndex) Remove(path string) error {
	if _, err := idx.db.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	idx.refreshCount()
	return nil
}

// refreshCount re-reads the row count after a single-path change. REPLACE
// may or may not add a row, so the count cannot be adjusted in place.
func (idx *FileIndex) refreshCount() {
	var n int
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return
	}
	idx.mu.Lock()
	idx.fileCount = n
	idx.mu.Unlock()
}

func (idx *FileIndex) shouldIgnore(name string) bool {
	for _, ign := range idx.config.IgnoreNames {
		if name == ign {
			return true
		}
	}
	return false
}

// =============================================================================
// SEARCH
// =============================================================================

// Search returns up to limit paths whose filename contains every term,
// case-insensitively, ordered by path. Empty terms match nothing. A
// never-built index returns ErrNotIndexed so callers can suggest a rebuild.
func (idx *FileIndex) Search(ctx context.Context, terms []string, limit int) ([]string, error) {
	var clean []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return nil, nil
	}
	if !idx.IsIndexed() {
		return nil, ErrNotIndexed
	}
	if limit <= 0 {
		limit = 20
	}

	var sb strings.Builder
	sb.WriteString(`SELECT path FROM files WHERE `)
	args := make([]any, 0, len(clean)+1)
	for i, t := range clean {
		if i > 0 {
			sb.WriteString(` AND `)
		}
		sb.WriteString(`name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(t)+"%")
	}
	sb.WriteString(` ORDER BY path LIMIT ?`)
	args = append(args, limit)

	rows, err := idx.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("search scan failed: %w", err)
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE metacharacters in a search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// =============================================================================
// STATS
// =============================================================================

// Stats reports index state.
type Stats struct {
	FileCount   int
	LastIndexed time.Time
}

// Stats returns the current index statistics.
func (idx *FileIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{FileCount: idx.fileCount, LastIndexed: idx.lastIndexed}
}

// IsIndexed returns true once at least one file has been indexed.
func (idx *FileIndex) IsIndexed() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.fileCount > 0
}
