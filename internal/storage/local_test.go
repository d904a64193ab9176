package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/pkg/apperr"
	"github.com/projecthub/backend/pkg/logger"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	logger.Init()

	store, err := NewLocal(config.StorageConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("failed creating local storage: %v", err)
	}
	return store
}

func TestNewLocalCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "storage")
	store, err := NewLocal(config.StorageConfig{Root: root})
	if err != nil {
		t.Fatalf("failed creating local storage: %v", err)
	}

	info, err := os.Stat(store.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("expected storage root directory at %s: %v", root, err)
	}
}

func TestSaveFile(t *testing.T) {
	store := newTestLocal(t)

	path, err := store.SaveFile("demo", "notes.txt", strings.NewReader("file body"))
	if err != nil {
		t.Fatalf("failed saving file: %v", err)
	}
	if path != store.FilePath("demo", "notes.txt") {
		t.Errorf("unexpected saved path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed reading saved file: %v", err)
	}
	if string(data) != "file body" {
		t.Errorf("unexpected file contents %q", data)
	}

	if !store.Exists("demo", "notes.txt") {
		t.Error("expected Exists to report the saved file")
	}

	t.Run("saving over an existing file is a conflict", func(t *testing.T) {
		_, err := store.SaveFile("demo", "notes.txt", strings.NewReader("other body"))
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("expected conflict, got %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed re-reading file: %v", err)
		}
		if string(data) != "file body" {
			t.Errorf("original contents were clobbered: %q", data)
		}
	})
}

func TestRenameProjectDir(t *testing.T) {
	store := newTestLocal(t)

	if err := store.CreateProjectDir("before"); err != nil {
		t.Fatalf("failed creating project dir: %v", err)
	}
	if _, err := store.SaveFile("before", "kept.txt", strings.NewReader("kept")); err != nil {
		t.Fatalf("failed saving file: %v", err)
	}

	if err := store.RenameProjectDir("before", "after"); err != nil {
		t.Fatalf("failed renaming project dir: %v", err)
	}

	if _, err := os.Stat(store.ProjectDir("before")); !os.IsNotExist(err) {
		t.Errorf("expected old directory to be gone, got %v", err)
	}
	if !store.Exists("after", "kept.txt") {
		t.Error("expected file to move with the directory")
	}

	t.Run("missing source directory is not found", func(t *testing.T) {
		err := store.RenameProjectDir("ghost", "anything")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestRemoveProjectTree(t *testing.T) {
	store := newTestLocal(t)

	if _, err := store.SaveFile("doomed", "a.txt", strings.NewReader("a")); err != nil {
		t.Fatalf("failed saving file: %v", err)
	}
	if _, err := store.SaveFile("doomed", "b.txt", strings.NewReader("b")); err != nil {
		t.Fatalf("failed saving file: %v", err)
	}

	if err := store.RemoveProjectTree("doomed"); err != nil {
		t.Fatalf("failed removing project tree: %v", err)
	}
	if _, err := os.Stat(store.ProjectDir("doomed")); !os.IsNotExist(err) {
		t.Errorf("expected project directory to be gone, got %v", err)
	}

	if err := store.RemoveProjectTree("doomed"); err != nil {
		t.Errorf("removing an absent tree should be a no-op, got %v", err)
	}
}

func TestRemoveFile(t *testing.T) {
	store := newTestLocal(t)

	if _, err := store.SaveFile("demo", "gone.txt", strings.NewReader("bye")); err != nil {
		t.Fatalf("failed saving file: %v", err)
	}

	if err := store.RemoveFile("demo", "gone.txt"); err != nil {
		t.Fatalf("failed removing file: %v", err)
	}
	if store.Exists("demo", "gone.txt") {
		t.Error("expected file to be removed")
	}

	if err := store.RemoveFile("demo", "gone.txt"); err != nil {
		t.Errorf("removing an absent file should be a no-op, got %v", err)
	}
}
