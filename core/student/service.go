package student

import (
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kahmed003/attendance/core"
	"github.com/kahmed003/attendance/core/attendance"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("student not found")
	ErrRosterNotFound     = errors.New("roster file not found")
	ErrInvalidPasskey     = errors.New("passkey must be a whole number")
	ErrInvalidCredentials = errors.New("invalid details entry")
)

// PartialError reports a mutation that was applied in memory but not fully recorded:
// either the records were not saved or the check-in was not appended to the log.
type PartialError struct {
	Err error
}

func (err *PartialError) Error() string { return err.Err.Error() }
func (err *PartialError) Unwrap() error { return err.Err }

// IsPartial reports whether err is a *PartialError.
func IsPartial(err error) bool {
	var pErr *PartialError
	return errors.As(err, &pErr)
}

type (
	Repository interface {
		// IsEmpty reports whether no student is enrolled.
		IsEmpty() bool
		// ReplaceAll discards every student and installs `students`.
		ReplaceAll(students []Student) error
		QueryAllStudents() ([]Student, error)
		GetStudent(name string) (Student, error)
		// IncrementAttendance adds one day to the named student's attendance.
		IncrementAttendance(name string) (Student, error)
	}

	// PersistError is returned by a Repository whose in-memory mutation succeeded
	// but whose save failed.
	PersistError struct {
		Err error
	}

	Service struct {
		repo   Repository
		log    attendance.Log
		logger core.Logger

		// guards read -> mutate -> persist -> append
		mu sync.Mutex
	}
)

func (err *PersistError) Error() string { return "saving student records: " + err.Err.Error() }
func (err *PersistError) Unwrap() error { return err.Err }

func NewService(repo Repository, log attendance.Log, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		log:    log,
		logger: logger,
	}
}

// IsEmpty reports whether a roster has been loaded.
func (svc *Service) IsEmpty() bool {
	return svc.repo.IsEmpty()
}

// Import replaces all students with the ones listed in the roster at `path`.
// Nothing changes unless every roster line is valid.
func (svc *Service) Import(path string) ([]Student, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrRosterNotFound, path)
		}
		return nil, errors.Wrap(err, "opening roster")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	students, err := ParseRoster(f)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.repo.ReplaceAll(students); err != nil {
		if isPersistErr(err) {
			svc.logger.Error("roster imported but not saved", err)
			return students, &PartialError{Err: err}
		}
		return nil, err
	}
	svc.logger.Info("Student data saved successfully.", map[string]interface{}{"students": len(students)})
	return students, nil
}

// CheckIn verifies the credentials and, on success, records one day of attendance.
// A *PartialError means the check-in succeeded but the records and the log have diverged.
func (svc *Service) CheckIn(creds Credentials) (Student, error) {
	passkey, err := creds.Clean()
	if err != nil {
		return Student{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	stu, err := svc.repo.GetStudent(creds.Name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Student{}, ErrInvalidCredentials
		}
		return Student{}, err
	}
	if !stu.Matches(creds.Email, passkey) {
		return Student{}, ErrInvalidCredentials
	}

	ev := attendance.NewEvent(stu.Name, nowFunc())
	extra := map[string]interface{}{"event": ev.ID.String(), "student": stu.Name, "date": ev.DateString()}

	var partial error
	stu, err = svc.repo.IncrementAttendance(stu.Name)
	if err != nil {
		if !isPersistErr(err) {
			return Student{}, err
		}
		svc.logger.Error("attendance records diverged: check-in not saved", err, extra)
		partial = err
	}
	if err := svc.log.Append(ev); err != nil {
		svc.logger.Error("attendance records diverged: check-in not logged", errors.Wrap(err, "appending to attendance log"), extra)
		if partial == nil {
			partial = err
		}
	}
	if partial != nil {
		return stu, &PartialError{Err: partial}
	}

	svc.logger.Info("student checked in", extra)
	return stu, nil
}

// QueryAll returns every student, ordered by name.
func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByName(name string) (Student, error) {
	return svc.repo.GetStudent(core.CleanString(name, true /* lower */))
}

// AttendanceCounts maps each student's name to the stored attendance.
func (svc *Service) AttendanceCounts() (map[string]int, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(students))
	for _, stu := range students {
		counts[stu.Name] = stu.Attendance
	}
	return counts, nil
}

func isPersistErr(err error) bool {
	var pErr *PersistError
	return errors.As(err, &pErr)
}
