package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloads(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"info\"\n")

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, WithReloadDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded Log.Level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
	if w.Reloads() < 1 {
		t.Errorf("Reloads() = %d", w.Reloads())
	}
}

func TestWatcherReportsBadReload(t *testing.T) {
	path := writeConfig(t, "")

	errs := make(chan error, 4)
	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg },
		WithReloadDebounce(10*time.Millisecond),
		WithReloadErrorHandler(func(err error) { errs <- err }))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[log\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errs:
		if err == nil {
			t.Error("nil reload error")
		}
	case cfg := <-reloaded:
		t.Fatalf("broken file reloaded: %+v", cfg)
	case <-time.After(3 * time.Second):
		t.Fatal("no error reported for a broken file")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	path := writeConfig(t, "")

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, WithReloadDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	sibling := filepath.Join(filepath.Dir(path), "other.toml")
	if err := os.WriteFile(sibling, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Error("reloaded after a sibling file changed")
	case <-time.After(200 * time.Millisecond):
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
