package main

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kahmed003/attendance/core"
	"github.com/kahmed003/attendance/core/attendance"
	"github.com/kahmed003/attendance/core/student"
	"github.com/kahmed003/attendance/services/report"
)

const (
	msgRole          = "Are you a student or teacher? (Enter 'student' or 'teacher'): "
	msgInvalidRole   = "Invalid input. Please enter 'student' or 'teacher'."
	msgNoStudents    = "No student records are loaded yet. Ask your teacher to upload a student list."
	msgLockedOut     = "ACCOUNT TEMPORARILY LOCKED. CONTACT ADMINISTRATION FOR ASSISTANCE."
	msgInvalidEntry  = "INVALID DETAILS ENTRY. PLEASE TRY AGAIN!"
	msgInvalidKey    = "INVALID PASSKEY. THE PASSKEY MUST BE A NUMBER. PLEASE TRY AGAIN!"
	msgWelcome       = "WELCOME TO CLASS! HAVE A GREAT DAY, %s\n"
	msgNotFullySaved = "Your attendance was recorded but could not be fully saved. Please tell your teacher."

	msgTeacherCode   = "Enter teacher access code: "
	msgInvalidCode   = "Invalid teacher code."
	msgAction        = "Enter 'upload' to upload a new student list, 'display' to show attendance records, 'chart' to show attendance chart, 'roster' to list students, 'reconcile' to check records, or 'quit' to exit: "
	msgInvalidAction = "Invalid action. Please enter 'upload', 'display', 'chart', 'roster', 'reconcile' or 'quit'."
	msgRosterPath    = "Enter the path to the student file (e.g., 'students.txt'): "

	msgRosterLoaded   = "Student data loaded successfully!"
	msgRosterNotFound = "File not found. Please check the file path and try again."
	msgRosterFormat   = "File format error. Please ensure the file is formatted correctly (Name, Email, Passkey)."
	msgNoRecords      = "No attendance records found."
	msgNoLog          = "Attendance file not found. Please ensure attendance data exists."
)

// session runs the interactive loop until a student checks in, gets locked out,
// or the input ends. Teachers return to the role prompt when they quit.
func (cli *commandLine) session() error {
	sessionID := uuid.New().String()
	var (
		tries    int
		lastName string
	)
	for {
		role, err := cli.prompt(msgRole)
		if err != nil {
			return endOfInput(err)
		}

		switch core.CleanString(role, true /* lower */) {
		case "student":
			if cli.svc.IsEmpty() {
				cli.println(msgNoStudents)
				continue
			}
			creds, err := cli.promptCredentials()
			if err != nil {
				return endOfInput(err)
			}
			ok, err := cli.checkIn(creds)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			tries++
			lastName = creds.Name
			if tries >= cli.conf.MaxAttempts {
				cli.println(msgLockedOut)
				cli.notifyLockout(sessionID, lastName, tries)
				return errLockedOut
			}
		case "teacher":
			if err := cli.teacherMenu(); err != nil {
				return endOfInput(err)
			}
		default:
			cli.println(msgInvalidRole)
		}
	}
}

func endOfInput(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

func (cli *commandLine) promptCredentials() (student.Credentials, error) {
	var creds student.Credentials
	var err error
	if creds.Name, err = cli.prompt("Enter your name: "); err != nil {
		return creds, err
	}
	if creds.Email, err = cli.prompt("Enter your student email: "); err != nil {
		return creds, err
	}
	if creds.Passkey, err = cli.promptSecret("Enter valid student passkey: "); err != nil {
		return creds, err
	}
	return creds, nil
}

// checkIn reports whether the student was checked in.
// Wrong credentials are reported to the student and are not an error.
func (cli *commandLine) checkIn(creds student.Credentials) (bool, error) {
	stu, err := cli.svc.CheckIn(creds)
	switch {
	case err == nil:
	case student.IsPartial(err):
		cli.println(msgNotFullySaved)
	case errors.Is(err, student.ErrInvalidPasskey):
		cli.println(msgInvalidKey)
		return false, nil
	case errors.Is(err, student.ErrInvalidCredentials):
		cli.println(msgInvalidEntry)
		return false, nil
	default:
		return false, err
	}
	cli.printf(msgWelcome, core.Capitalize(stu.Name))
	return true, nil
}

func (cli *commandLine) notifyLockout(sessionID, name string, tries int) {
	extra := map[string]interface{}{"session": sessionID, "name": name, "attempts": tries}
	cli.logger.Warn("student locked out", extra)

	if cli.conf.AdminEmail == "" {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: cli.conf.AdminEmail}},
		Subject: "Student check-in locked",
		BodyStr: fmt.Sprintf(
			"%d failed check-in attempts, the last one for %q, on %s (session %s).",
			tries, core.CleanString(name, true /* lower */), time.Now().Format(attendance.DateLayout), sessionID,
		),
	}
	if err := cli.mailSvc.SendMessages(msg); err != nil {
		cli.logger.Error("sending lockout notice", err, extra)
	}
}

func (cli *commandLine) teacherMenu() error {
	code, err := cli.promptSecret(msgTeacherCode)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(cli.conf.TeacherCode)) != 1 {
		cli.println(msgInvalidCode)
		return nil
	}

	for {
		action, err := cli.prompt(msgAction)
		if err != nil {
			return err
		}
		switch core.CleanString(action, true /* lower */) {
		case "upload":
			path, err := cli.prompt(msgRosterPath)
			if err != nil {
				return err
			}
			_ = cli.importRoster(core.CleanString(path))
		case "display":
			cli.menuAction("display", cli.display)
		case "chart":
			cli.menuAction("chart", cli.chart)
		case "roster":
			cli.menuAction("roster", cli.roster)
		case "reconcile":
			cli.menuAction("reconcile", cli.reconcile)
		case "quit":
			return nil
		default:
			cli.println(msgInvalidAction)
		}
	}
}

// menuAction runs a report and keeps the menu going when it fails.
func (cli *commandLine) menuAction(action string, fn func() error) {
	if err := fn(); err != nil {
		cli.printf("Could not %s: %v\n", action, err)
		cli.logger.Error(action+" failed", err)
	}
}

// importRoster reports the outcome of the import to the teacher and returns it.
func (cli *commandLine) importRoster(path string) error {
	cli.println("\nLoading students...")
	students, err := cli.svc.Import(path)
	switch {
	case err == nil:
	case student.IsPartial(err):
		cli.println(msgRosterLoaded)
		cli.printf("Error saving student data: %v\n", err)
		return err
	case errors.Is(err, student.ErrRosterNotFound):
		cli.println(msgRosterNotFound)
		return err
	case errors.Is(err, student.ErrRosterFormat):
		cli.println(msgRosterFormat)
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			for _, fe := range vErr.Fields {
				cli.printf("  %s\n", fe)
			}
		}
		return err
	default:
		cli.printf("Error loading student data: %v\n", err)
		return err
	}
	cli.println(msgRosterLoaded)
	cli.printf("%d student(s) enrolled.\n", len(students))
	return nil
}

func (cli *commandLine) display() error {
	lines, err := cli.log.ReadAll()
	if err != nil {
		if err == attendance.ErrNoRecords {
			cli.println(msgNoRecords)
			return nil
		}
		return err
	}
	students, err := cli.svc.QueryAll()
	if err != nil {
		return err
	}
	reportsvc.ListRecords(cli.out, lines, students)
	return nil
}

func (cli *commandLine) chart() error {
	lines, err := cli.log.ReadAll()
	if err != nil {
		if err == attendance.ErrNoRecords {
			cli.println(msgNoLog)
			return nil
		}
		return err
	}
	counts, skipped := attendance.CountByWeekday(lines)
	if skipped > 0 {
		cli.logger.Warn("skipped unreadable attendance log lines", map[string]interface{}{"skipped": skipped})
	}
	reportsvc.WeekdayChart(cli.out, counts, skipped, reportsvc.ChartOptions{
		Height: cli.conf.ChartHeight,
		Color:  cli.conf.Color,
	})
	return nil
}

func (cli *commandLine) roster() error {
	students, err := cli.svc.QueryAll()
	if err != nil {
		return err
	}
	if len(students) == 0 {
		cli.println(msgNoStudents)
		return nil
	}
	reportsvc.RosterTable(cli.out, students)
	return nil
}

func (cli *commandLine) reconcile() error {
	stored, err := cli.svc.AttendanceCounts()
	if err != nil {
		return err
	}
	lines, err := cli.log.ReadAll()
	if err != nil && err != attendance.ErrNoRecords {
		return err
	}
	reportsvc.Reconciliation(cli.out, attendance.Reconcile(stored, attendance.CountByStudent(lines)))
	return nil
}
