package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Joseda-hg/lazyreminder/internal/config"
	"github.com/Joseda-hg/lazyreminder/internal/logging"
	"github.com/Joseda-hg/lazyreminder/internal/tasks"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Resolve(t.TempDir())
	return cfg
}

func TestLoadCollectionsCreatesMissingFiles(t *testing.T) {
	cfg := testConfig(t)

	opts, err := loadCollections(cfg, logging.New(io.Discard, "info", "text"))
	if err != nil {
		t.Fatalf("load collections: %v", err)
	}
	if opts.TasksPath != cfg.TasksPath {
		t.Fatalf("expected task path %q, got %q", cfg.TasksPath, opts.TasksPath)
	}
	if !strings.HasPrefix(opts.Status, "Recreated ") {
		t.Fatalf("expected recreated status, got %q", opts.Status)
	}
	for _, path := range []string{cfg.TasksPath, cfg.GroceryTypesPath, cfg.GroceryListPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
}

func TestLoadCollectionsLeavesCorruptTaskFile(t *testing.T) {
	cfg := testConfig(t)
	corrupt := []byte(tasks.Token + "\n2025-01-05T09:00:00Z,Whenever,broken\n")
	if err := os.MkdirAll(filepath.Dir(cfg.TasksPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfg.TasksPath, corrupt, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	opts, err := loadCollections(cfg, logging.New(io.Discard, "info", "text"))
	if err != nil {
		t.Fatalf("load collections: %v", err)
	}
	if opts.TasksPath != "" {
		t.Fatalf("expected an untitled task list, got path %q", opts.TasksPath)
	}
	if opts.Tasks.Len() != 0 {
		t.Fatalf("expected empty task list, got %d", opts.Tasks.Len())
	}
	if !strings.Contains(opts.Status, "could not load tasks.txt") || !strings.Contains(opts.Status, "line 2") {
		t.Fatalf("expected load failure in status, got %q", opts.Status)
	}

	data, err := os.ReadFile(cfg.TasksPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, corrupt) {
		t.Fatalf("expected task file to be left alone, got %q", data)
	}
}
