package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

var (
	ErrFileNotFound      = errors.New("filesystem: file not found")
	ErrDirectoryNotFound = errors.New("filesystem: directory not found")
	ErrFileAlreadyExists = errors.New("filesystem: file already exists")
	ErrInvalidPath       = errors.New("filesystem: invalid path")
)

// Kind tells files and directories apart.
type Kind int

const (
	KindMissing Kind = iota
	KindFile
	KindDirectory
)

type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	OpenAppend(path string) (*os.File, error)
	MoveFile(source, destination string) error
	DeleteFile(path string) error

	FileExists(path string) (bool, error)
	Kind(path string) (Kind, error)

	CreateDirectory(path string) error
	ListDirectory(path string) ([]string, error)
}

type localFileSystem struct {
}

func NewLocalFileSystem() Filesystem {
	return &localFileSystem{}
}

func (filesystem *localFileSystem) CreateDirectory(path string) error {
	if path == "" {
		return ErrInvalidPath
	}

	kind, err := filesystem.Kind(path)
	if err != nil {
		return err
	}
	switch kind {
	case KindDirectory:
		return nil
	case KindFile:
		return fmt.Errorf("%w: %s", ErrFileAlreadyExists, path)
	}

	return os.MkdirAll(path, 0770)
}

func (filesystem *localFileSystem) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (filesystem *localFileSystem) FileExists(path string) (bool, error) {
	kind, err := filesystem.Kind(path)
	if err != nil {
		return false, err
	}
	return kind == KindFile, nil
}

func (filesystem *localFileSystem) Kind(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return KindMissing, nil
		}
		return KindMissing, err
	}

	if info.IsDir() {
		return KindDirectory, nil
	}
	return KindFile, nil
}

// ListDirectory returns the sorted names of the entries in path.
func (filesystem *localFileSystem) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, path)
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	return names, nil
}

// MoveFile renames source to destination, refusing to overwrite.
func (filesystem *localFileSystem) MoveFile(source string, destination string) error {
	if source == "" || destination == "" {
		return ErrInvalidPath
	}

	exists, err := filesystem.FileExists(source)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrFileNotFound, source)
	}

	kind, err := filesystem.Kind(destination)
	if err != nil {
		return err
	}
	if kind != KindMissing {
		return fmt.Errorf("%w: %s", ErrFileAlreadyExists, destination)
	}

	if err := filesystem.CreateDirectory(filepath.Dir(destination)); err != nil {
		return err
	}

	return os.Rename(source, destination)
}

// OpenAppend opens path for appending, creating it and its directory.
func (filesystem *localFileSystem) OpenAppend(path string) (*os.File, error) {
	if err := filesystem.CreateDirectory(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		slog.Debug("reading file failed", "path", path, "error", err)
		return nil, err
	}

	return content, nil
}

// GetFileExtension returns the extension without the leading dot.
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return ext[1:]
}
