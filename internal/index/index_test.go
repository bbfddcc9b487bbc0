// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestIndex(t *testing.T, files ...string) (*FileIndex, string) {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	idx, err := New(&Config{
		Roots:        []string{root},
		DatabasePath: filepath.Join(t.TempDir(), "locate.db"),
		IgnoreNames:  []string{".git", "node_modules"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx, root
}

func TestRebuildAndSearch(t *testing.T) {
	idx, root := newTestIndex(t,
		"Documents/resume.pdf",
		"Documents/cover-letter.odt",
		"Pictures/resume-photo.jpg",
		"notes.txt",
	)
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	got, err := idx.Search(context.Background(), []string{"resume", "pdf"}, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := filepath.Join(root, "Documents", "resume.pdf")
	if len(got) != 1 || got[0] != want {
		t.Errorf("Search = %v, want [%s]", got, want)
	}

	if stats := idx.Stats(); stats.FileCount != 4 {
		t.Errorf("FileCount = %d, want 4", stats.FileCount)
	}
	if !idx.IsIndexed() {
		t.Error("IsIndexed = false after rebuild")
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	idx, _ := newTestIndex(t, "Documents/Resume.PDF")
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, err := idx.Search(context.Background(), []string{"resume"}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("case-insensitive search returned %v", got)
	}
}

func TestSearchLimit(t *testing.T) {
	files := make([]string, 30)
	for i := range files {
		files[i] = filepath.Join("logs", "report-"+string(rune('a'+i%26))+string(rune('0'+i/26))+".log")
	}
	idx, _ := newTestIndex(t, files...)
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, err := idx.Search(context.Background(), []string{"report"}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 20 {
		t.Errorf("got %d results, want capped at 20", len(got))
	}
	// Results are path-ordered.
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("results not ordered: %q before %q", got[i-1], got[i])
		}
	}
}

func TestSearchEmptyTerms(t *testing.T) {
	idx, _ := newTestIndex(t, "a.txt")
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := idx.Search(context.Background(), []string{"", "  "}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("empty terms returned %v, want nil", got)
	}
}

func TestSearchUnindexedReturnsErrNotIndexed(t *testing.T) {
	idx, _ := newTestIndex(t, "a.txt")

	// No rebuild has run, so there is nothing to search yet.
	if _, err := idx.Search(context.Background(), []string{"a"}, 20); !errors.Is(err, ErrNotIndexed) {
		t.Fatalf("Search on unbuilt index = %v, want ErrNotIndexed", err)
	}

	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Search(context.Background(), []string{"a"}, 20); err != nil {
		t.Fatalf("Search after rebuild: %v", err)
	}
}

func TestSearchEscapesLikeMetachars(t *testing.T) {
	idx, _ := newTestIndex(t, "100%_done.txt", "100-done.txt")
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := idx.Search(context.Background(), []string{"%_"}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "100%_done.txt" {
		t.Errorf("metachar search = %v", got)
	}
}

func TestRebuildIgnoresDirectories(t *testing.T) {
	idx, _ := newTestIndex(t,
		"src/main.go",
		".git/objects/abc",
		"node_modules/pkg/index.js",
	)
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stats := idx.Stats(); stats.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1 (ignored dirs skipped)", stats.FileCount)
	}
}

func TestRebuildReplacesOldEntries(t *testing.T) {
	idx, root := newTestIndex(t, "old.txt")
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(root, "old.txt")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got, _ := idx.Search(context.Background(), []string{"old"}, 20); got != nil {
		t.Errorf("stale entry survived rebuild: %v", got)
	}
	if got, _ := idx.Search(context.Background(), []string{"new"}, 20); len(got) != 1 {
		t.Errorf("new entry missing after rebuild: %v", got)
	}
}

func TestUpdateAndRemove(t *testing.T) {
	idx, root := newTestIndex(t)
	path := filepath.Join(root, "fresh.md")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := idx.Update(path); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := idx.Search(context.Background(), []string{"fresh"}, 20); len(got) != 1 {
		t.Errorf("Update did not index the file: %v", got)
	}

	if err := idx.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got, _ := idx.Search(context.Background(), []string{"fresh"}, 20); got != nil {
		t.Errorf("Remove left the entry behind: %v", got)
	}
}

func TestWatcherPicksUpNewFile(t *testing.T) {
	idx, root := newTestIndex(t)
	w, err := NewWatcher(idx, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(root, "incoming.csv")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got, err := idx.Search(context.Background(), []string{"incoming"}, 20)
		if err != nil && !errors.Is(err, ErrNotIndexed) {
			t.Fatal(err)
		}
		if len(got) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("watcher never indexed the new file")
}
