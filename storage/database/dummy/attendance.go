package dummydb

import (
	"github.com/kahmed003/attendance/core/attendance"
)

type attendanceLog struct {
	db *logTable
}

var _ attendance.Log = (*attendanceLog)(nil) // interface compliance check

func NewAttendanceLog(db *DB) attendance.Log {
	return &attendanceLog{db: db.log}
}

func (l *attendanceLog) Append(ev attendance.Event) error {
	l.db.Lock()
	defer l.db.Unlock()

	if l.db.appendErr != nil {
		return l.db.appendErr
	}
	l.db.lines = append(l.db.lines, ev.String())
	return nil
}

func (l *attendanceLog) ReadAll() ([]string, error) {
	l.db.Lock()
	defer l.db.Unlock()

	if l.db.lines == nil {
		return nil, attendance.ErrNoRecords
	}
	lines := make([]string, len(l.db.lines))
	copy(lines, l.db.lines)
	return lines, nil
}
