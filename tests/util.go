package testutil

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kahmed003/attendance/core"
	"github.com/kahmed003/attendance/core/student"
)

// Logger is a core.Logger that keeps every entry for inspection.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) add(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.add("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.add("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.add("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.add("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.add("FATAL", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

// Count returns the number of entries logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// WriteFile writes content to name inside dir and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

// CreateStudents installs students into repo, replacing its contents.
func CreateStudents(t *testing.T, repo student.Repository, students ...student.Student) []student.Student {
	if err := repo.ReplaceAll(students); err != nil {
		t.Fatalf("CreateStudents() failed: %v", err)
	}
	return students
}

// TestConfig returns a config rooted at dir.
func TestConfig(dir string) *core.Config {
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Attendance",
		DataDir:          dir,
		StoreFile:        "students_data.json",
		LogFile:          "attendance.txt",
		TeacherCode:      "KELLY",
		MaxAttempts:      2,
		ChartHeight:      10,
		DefaultFromEmail: "noreply@localhost",
	}
}
