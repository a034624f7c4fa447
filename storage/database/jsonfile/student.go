package jsonfiledb

import (
	"sort"

	"github.com/kahmed003/attendance/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

func (repo *studentRepository) persist() error {
	if err := repo.db.save(); err != nil {
		return &student.PersistError{Err: err}
	}
	return nil
}

func (repo *studentRepository) IsEmpty() bool {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table) == 0
}

func (repo *studentRepository) ReplaceAll(students []student.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	table := make(map[string]*student.Student, len(students))
	for _, s := range students {
		s := s
		table[s.Name] = &s
	}
	repo.db.table = table
	return repo.persist()
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudent(name string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[name]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) IncrementAttendance(name string) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.table[name]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.Attendance++
	return *s, repo.persist()
}
