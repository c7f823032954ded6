package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/freekieb7/rawhttp/filesystem"
	"github.com/freekieb7/rawhttp/schedule"
)

const (
	DefaultLogFile     = "server.log"
	RotationInterval   = 24 * time.Hour
	rotationDateFormat = "2006-01-02"
)

// RotatingFile is an append-only log file that can be moved aside and
// reopened while writers keep using it.
type RotatingFile struct {
	fs   filesystem.Filesystem
	path string

	mu   sync.Mutex
	file *os.File
}

func OpenRotatingFile(fs filesystem.Filesystem, dir, name string) (*RotatingFile, error) {
	f := &RotatingFile{
		fs:   fs,
		path: filepath.Join(dir, name),
	}

	file, err := fs.OpenAppend(f.path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening log file: %w", err)
	}
	f.file = file

	return f, nil
}

func (f *RotatingFile) Path() string {
	return f.path
}

func (f *RotatingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, os.ErrClosed
	}
	return f.file.Write(p)
}

// Rotate moves the current file to <path>.<date> (adding a counter when that
// name is taken) and starts a fresh file at path. It returns the archive name.
func (f *RotatingFile) Rotate(now time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file != nil {
		if err := f.file.Close(); err != nil {
			return "", err
		}
		f.file = nil
	}

	archive, err := f.archiveName(now)
	if err == nil {
		err = f.fs.MoveFile(f.path, archive)
	}

	// Reopen even when the move failed so writers keep a file.
	file, openErr := f.fs.OpenAppend(f.path)
	if openErr != nil {
		return "", errors.Join(err, openErr)
	}
	f.file = file

	if err != nil {
		return "", err
	}
	return archive, nil
}

func (f *RotatingFile) archiveName(now time.Time) (string, error) {
	base := f.path + "." + now.Format(rotationDateFormat)
	name := base
	for i := 1; ; i++ {
		exists, err := f.fs.FileExists(name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s.%d", base, i)
	}
}

func (f *RotatingFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// RotationJob rotates f every interval.
func RotationJob(f *RotatingFile, interval time.Duration) *schedule.Job {
	return schedule.NewJob().
		WithName("log-rotation").
		WithInterval(interval).
		WithTasks(func(ctx context.Context) error {
			_, err := f.Rotate(time.Now())
			return err
		})
}
