// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lilithlinux/lilim/internal/index"
)

func TestAppWatcherKeepsIndexCurrent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "seed.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	idx, err := index.New(&index.Config{
		Roots:        []string{root},
		DatabasePath: filepath.Join(t.TempDir(), "locate.db"),
	})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	app := &App{Index: idx}
	app.StartWatcher(10 * time.Millisecond)
	if app.Watcher == nil {
		t.Fatal("watcher did not start")
	}
	defer app.Close()

	if err := os.WriteFile(filepath.Join(root, "grimoire.pdf"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got, err := idx.Search(context.Background(), []string{"grimoire"}, 20)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("watcher never indexed the new file")
}
