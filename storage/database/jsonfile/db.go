package jsonfiledb

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/kahmed003/attendance/core/student"
)

type (
	// DB keeps the student records in memory and persists them as one JSON document.
	DB struct {
		path    string
		student *studentTable
		isNew   bool
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
		save  func() error
	}

	// record is the persisted shape of a student, keyed by name in the document.
	record struct {
		Email      string `json:"email"`
		Passkey    int    `json:"passkey"`
		Attendance int    `json:"attendance"`
	}
)

// Open loads the records persisted at path.
// A missing file is not an error: the DB starts empty and IsNew reports true.
func Open(path string) (*DB, error) {
	db := &DB{
		path:    path,
		student: &studentTable{table: make(map[string]*student.Student)},
	}
	db.student.save = db.save

	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			db.isNew = true
			return db, nil
		}
		return nil, errors.Wrap(err, "reading student records")
	}

	var doc map[string]record
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "decoding student records %s", path)
	}
	for name, rec := range doc {
		if rec.Attendance < 0 {
			return nil, errors.Errorf("decoding student records %s: negative attendance for %q", path, name)
		}
		db.student.table[name] = &student.Student{
			Name:       name,
			Email:      rec.Email,
			Passkey:    rec.Passkey,
			Attendance: rec.Attendance,
		}
	}
	return db, nil
}

// IsNew reports whether no records were persisted when the DB was opened.
func (db *DB) IsNew() bool { return db.isNew }

func (db *DB) Path() string { return db.path }

// save writes every record to disk, replacing the previous document.
// Callers must hold the student table lock.
func (db *DB) save() error {
	doc := make(map[string]record, len(db.student.table))
	for name, s := range db.student.table {
		doc[name] = record{Email: s.Email, Passkey: s.Passkey, Attendance: s.Attendance}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding student records")
	}

	tmp, err := ioutil.TempFile(filepath.Dir(db.path), "."+filepath.Base(db.path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return errors.Wrap(err, "replacing student records")
	}
	db.isNew = false
	return nil
}
