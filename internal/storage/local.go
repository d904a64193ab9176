package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/pkg/apperr"
	"github.com/projecthub/backend/pkg/logger"
)

// Local stores uploaded files on a directory tree rooted at the configured
// storage path, one subdirectory per project name.
type Local struct {
	root string
}

func NewLocal(cfg config.StorageConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, apperr.Internal("failed creating storage root", err)
	}
	return &Local{root: cfg.Root}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) ProjectDir(projectName string) string {
	return filepath.Join(l.root, projectName)
}

// FilePath resolves a document's relative fileURL under its project
// directory.
func (l *Local) FilePath(projectName, fileURL string) string {
	return filepath.Join(l.ProjectDir(projectName), fileURL)
}

func (l *Local) CreateProjectDir(projectName string) error {
	dir := l.ProjectDir(projectName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("storage_mkdir_failed", err, map[string]interface{}{
			"dir": dir,
		})
		return apperr.Internal("failed creating project directory", err)
	}
	return nil
}

// RenameProjectDir moves a project's directory to its new name. The caller
// must not commit the matching database change unless this succeeds.
func (l *Local) RenameProjectDir(oldName, newName string) error {
	oldDir := l.ProjectDir(oldName)
	newDir := l.ProjectDir(newName)

	if _, err := os.Stat(oldDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("Project not found")
		}
		return apperr.Internal("failed checking project directory", err)
	}

	if err := os.Rename(oldDir, newDir); err != nil {
		logger.Error("storage_rename_failed", err, map[string]interface{}{
			"old_dir": oldDir,
			"new_dir": newDir,
		})
		return apperr.Internal("failed renaming project directory", err)
	}

	logger.Info("storage_project_renamed", map[string]interface{}{
		"old_dir": oldDir,
		"new_dir": newDir,
	})
	return nil
}

func (l *Local) RemoveProjectTree(projectName string) error {
	dir := l.ProjectDir(projectName)
	if err := os.RemoveAll(dir); err != nil {
		logger.Error("storage_rmtree_failed", err, map[string]interface{}{
			"dir": dir,
		})
		return apperr.Internal("failed removing project directory", err)
	}
	return nil
}

// SaveFile writes an uploaded file into the project directory, creating it
// if needed. An existing file with the same name is a conflict.
func (l *Local) SaveFile(projectName, filename string, reader io.Reader) (string, error) {
	if err := l.CreateProjectDir(projectName); err != nil {
		return "", err
	}

	path := l.FilePath(projectName, filename)
	if _, err := os.Stat(path); err == nil {
		return "", apperr.Conflict("File with this name already exists")
	}

	out, err := os.Create(path)
	if err != nil {
		logger.Error("storage_write_failed", err, map[string]interface{}{
			"path": path,
		})
		return "", apperr.Internal("failed saving file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		_ = os.Remove(path)
		logger.Error("storage_write_failed", err, map[string]interface{}{
			"path": path,
		})
		return "", apperr.Internal("failed saving file", err)
	}

	return path, nil
}

// RemoveFile deletes a document's backing file. A file that is already
// missing is a no-op.
func (l *Local) RemoveFile(projectName, fileURL string) error {
	path := l.FilePath(projectName, fileURL)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("storage_remove_failed", err, map[string]interface{}{
			"path": path,
		})
		return apperr.Internal("failed removing file", err)
	}
	return nil
}

func (l *Local) Exists(projectName, fileURL string) bool {
	_, err := os.Stat(l.FilePath(projectName, fileURL))
	return err == nil
}
