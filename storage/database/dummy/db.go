package dummydb

import (
	"sync"

	"github.com/kahmed003/attendance/core/student"
)

type (
	// DB is an in-memory stand-in for the persisted student records and the attendance log.
	DB struct {
		student *studentTable
		log     *logTable
	}

	studentTable struct {
		sync.RWMutex
		table   map[string]*student.Student
		saveErr error
	}

	logTable struct {
		sync.Mutex
		lines     []string
		appendErr error
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		log:     &logTable{},
	}
	return db, nil
}

// FailSaves makes every subsequent student save fail with err (nil restores saving).
func (db *DB) FailSaves(err error) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.saveErr = err
}

// FailAppends makes every subsequent log append fail with err (nil restores appending).
func (db *DB) FailAppends(err error) {
	db.log.Lock()
	defer db.log.Unlock()
	db.log.appendErr = err
}
