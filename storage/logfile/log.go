package logfile

import (
	"bufio"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/kahmed003/attendance/core/attendance"
)

// File is an attendance.Log kept as a plain text file, one line per check-in.
type File struct {
	path string
	mu   sync.Mutex
}

var _ attendance.Log = (*File)(nil) // interface compliance check

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Append writes the event line and syncs it to disk before returning.
func (f *File) Append(ev attendance.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening attendance log")
	}
	if _, err := fd.WriteString(ev.String() + "\n"); err != nil {
		_ = fd.Close()
		return errors.Wrap(err, "writing attendance log")
	}
	if err := fd.Sync(); err != nil {
		_ = fd.Close()
		return errors.Wrap(err, "syncing attendance log")
	}
	return errors.Wrap(fd.Close(), "closing attendance log")
}

func (f *File) ReadAll() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, attendance.ErrNoRecords
		}
		return nil, errors.Wrap(err, "opening attendance log")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer fd.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading attendance log")
	}
	return lines, nil
}
