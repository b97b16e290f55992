package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	w, err := New(0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if w.watcher == nil {
		t.Error("New() did not create fsnotify watcher")
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("New(0) debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

func TestWatch(t *testing.T) {
	w, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "assets")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	if err := w.Watch(tmpDir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	w.mu.Lock()
	_, rootTracked := w.paths[tmpDir]
	_, subDirTracked := w.paths[subDir]
	w.mu.Unlock()

	if !rootTracked {
		t.Error("Watch() did not track root directory")
	}
	if !subDirTracked {
		t.Error("Watch() did not track subdirectory")
	}
}

func TestWatchNonExistent(t *testing.T) {
	w, err := New(0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Watch() on missing path should return error")
	}
}

func TestWatchFile(t *testing.T) {
	w, err := New(0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "main.js")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	// Watching a plain file is a no-op, not an error.
	if err := w.Watch(file); err != nil {
		t.Errorf("Watch() on file error = %v", err)
	}
}

func TestRunDebouncesBurst(t *testing.T) {
	w, err := New(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	tmpDir := t.TempDir()
	if err := w.Watch(tmpDir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 16)
	go w.Run(ctx, func() {
		fired <- struct{}{}
	})

	// A burst of writes should coalesce into a single callback.
	for i := 0; i < 5; i++ {
		name := filepath.Join(tmpDir, "chunk.js")
		if err := os.WriteFile(name, []byte("content"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not fire callback after events")
	}

	// No further events, so the callback should stay quiet.
	select {
	case <-fired:
		t.Error("Run() fired more than once for a single burst")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRunAddsCreatedDirectories(t *testing.T) {
	w, err := New(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	tmpDir := t.TempDir()
	if err := w.Watch(tmpDir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx, nil)

	newDir := filepath.Join(tmpDir, "assets")
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		w.mu.Lock()
		tracked := w.paths[newDir]
		w.mu.Unlock()
		if tracked {
			return
		}
		select {
		case <-deadline:
			t.Fatal("created directory was never added to watch list")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestClose(t *testing.T) {
	w, err := New(0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
