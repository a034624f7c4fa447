package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahmed003/attendance/core/attendance"
	"github.com/kahmed003/attendance/core/student"
	"github.com/kahmed003/attendance/services/email"
	"github.com/kahmed003/attendance/storage/database/dummy"
	"github.com/kahmed003/attendance/storage/logfile"
	"github.com/kahmed003/attendance/tests"
)

var alice = student.Student{Name: "alice", Email: "alice@x.com", Passkey: 123}

type testCLI struct {
	*commandLine
	db      *dummydb.DB
	repo    student.Repository
	logger  *testutil.Logger
	stdout  *bytes.Buffer
	mailbox *bytes.Buffer
}

func setup(t *testing.T, input string, students ...student.Student) *testCLI {
	// set up DB & repos
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewStudentRepository(db)
	if len(students) > 0 {
		testutil.CreateStudents(t, repo, students...)
	}
	attendanceLog := dummydb.NewAttendanceLog(db)

	conf := testutil.TestConfig(t.TempDir())
	logger := &testutil.Logger{}
	stdout, mailbox := new(bytes.Buffer), new(bytes.Buffer)

	isTerminalFunc = func(fd int) bool { return false }

	// start CLI
	return &testCLI{
		commandLine: &commandLine{
			conf:    conf,
			logger:  logger,
			svc:     student.NewService(repo, attendanceLog, logger),
			log:     attendanceLog,
			mailSvc: emailsvc.NewConsoleService(mailbox, conf),
			in:      bufio.NewReader(strings.NewReader(input)),
			out:     stdout,
		},
		db:      db,
		repo:    repo,
		logger:  logger,
		stdout:  stdout,
		mailbox: mailbox,
	}
}

func (cli *testCLI) attendanceOf(t *testing.T, name string) int {
	stu, err := cli.repo.GetStudent(name)
	require.NoError(t, err)
	return stu.Attendance
}

func (cli *testCLI) logLines() []string {
	lines, _ := cli.log.ReadAll()
	return lines
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_session(t *testing.T) {
	today := time.Now().Format(attendance.DateLayout)

	type extra struct {
		students  []student.Student
		adminMail string
		wantOut   []string
		wantDays  int // alice's attendance afterwards
	}
	tests := []cliTest{
		{
			name:  "no input",
			extra: extra{students: []student.Student{alice}},
		},
		{
			name:  "invalid role",
			args:  []string{"pupil", "STUDENT"},
			extra: extra{wantOut: []string{msgInvalidRole}},
		},
		{
			name:  "no roster loaded",
			args:  []string{"student"},
			extra: extra{wantOut: []string{msgNoStudents}},
		},
		{
			name: "check in",
			args: []string{"Student", "Alice", "ALICE@x.com", "123"},
			extra: extra{
				students: []student.Student{alice},
				wantOut:  []string{"WELCOME TO CLASS! HAVE A GREAT DAY, Alice"},
				wantDays: 1,
			},
		},
		{
			name: "check in on second attempt",
			args: []string{"student", "alice", "bob@x.com", "123", "student", "alice", "alice@x.com", "123"},
			extra: extra{
				students: []student.Student{alice},
				wantOut:  []string{msgInvalidEntry, "WELCOME TO CLASS!"},
				wantDays: 1,
			},
		},
		{
			name:    "locked out",
			args:    []string{"student", "alice", "alice@x.com", "999", "student", "alice", "alice@x.com", "abc", "student"},
			wantErr: errLockedOut,
			extra: extra{
				students:  []student.Student{alice},
				adminMail: "admin@x.com",
				wantOut:   []string{msgInvalidEntry, msgInvalidKey, msgLockedOut},
			},
		},
		{
			name: "teacher does not count as an attempt",
			args: []string{"student", "zed", "alice@x.com", "123", "teacher", "nope", "student", "alice", "alice@x.com", "123"},
			extra: extra{
				students: []student.Student{alice},
				wantOut:  []string{msgInvalidEntry, msgInvalidCode, "WELCOME TO CLASS!"},
				wantDays: 1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			input := strings.Join(tt.args, "\n")
			cli := setup(t, input, ex.students...)
			cli.conf.AdminEmail = ex.adminMail

			err := cli.run([]string{"attendance"})
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				require.NoError(t, err)
			}

			for _, want := range ex.wantOut {
				assert.Contains(t, cli.stdout.String(), want)
			}
			if len(ex.students) > 0 {
				assert.Equal(t, ex.wantDays, cli.attendanceOf(t, "alice"))
			}
			if ex.wantDays > 0 {
				assert.Equal(t, []string{"alice attended on " + today}, cli.logLines())
			} else {
				assert.Empty(t, cli.logLines())
			}
		})
	}
}

func Test_commandLine_session_lockoutNotice(t *testing.T) {
	input := "student\nalice\nx@x.com\n1\nstudent\nbob\nx@x.com\n2\n"

	t.Run("emailed to the admin", func(t *testing.T) {
		cli := setup(t, input, alice)
		cli.conf.AdminEmail = "admin@x.com"

		assert.Equal(t, errLockedOut, cli.run([]string{"attendance"}))
		assert.Equal(t, 1, cli.logger.Count("WARN"))
		assert.Contains(t, cli.mailbox.String(), "To: <admin@x.com>")
		assert.Contains(t, cli.mailbox.String(), `the last one for "bob"`)
	})

	t.Run("logged only", func(t *testing.T) {
		cli := setup(t, input, alice)

		assert.Equal(t, errLockedOut, cli.run([]string{"attendance"}))
		assert.Equal(t, 1, cli.logger.Count("WARN"))
		assert.Empty(t, cli.mailbox.String())
	})

	t.Run("more attempts allowed", func(t *testing.T) {
		cli := setup(t, input+"student\nalice\nalice@x.com\n123\n", alice)
		cli.conf.MaxAttempts = 3

		require.NoError(t, cli.run([]string{"attendance"}))
		assert.Equal(t, 1, cli.attendanceOf(t, "alice"))
	})
}

func Test_commandLine_session_diverged(t *testing.T) {
	cli := setup(t, "student\nalice\nalice@x.com\n123\n", alice)
	cli.db.FailAppends(errors.New("read-only file system"))

	require.NoError(t, cli.run([]string{"attendance"}))
	assert.Contains(t, cli.stdout.String(), msgNotFullySaved)
	assert.Contains(t, cli.stdout.String(), "WELCOME TO CLASS!")
	assert.Equal(t, 1, cli.attendanceOf(t, "alice"))
	assert.Equal(t, 1, cli.logger.Count("ERROR"))
}

func Test_commandLine_teacherMenu(t *testing.T) {
	dir := t.TempDir()
	goodRoster := testutil.WriteFile(t, dir, "students.txt", "Name,Email,Passkey\nAlice,alice@x.com,123\nBob,bob@x.com,456\n")
	badRoster := testutil.WriteFile(t, dir, "bad.txt", "Name,Email,Passkey\nAlice,alice@x.com\n")

	type extra struct {
		wantOut     []string
		wantNotOut  []string
		wantStudent int // number of enrolled students afterwards
	}
	tests := []cliTest{
		{
			name:  "wrong code",
			args:  []string{"teacher", "kelly"},
			extra: extra{wantOut: []string{msgInvalidCode}, wantNotOut: []string{msgAction}},
		},
		{
			name:  "quit",
			args:  []string{"teacher", "KELLY", "quit"},
			extra: extra{wantOut: []string{msgAction, msgRole}},
		},
		{
			name:  "invalid action",
			args:  []string{"teacher", "KELLY", "dance"},
			extra: extra{wantOut: []string{msgInvalidAction}},
		},
		{
			name: "upload",
			args: []string{"teacher", "KELLY", "upload", " " + goodRoster + " ", "roster", "quit"},
			extra: extra{
				wantOut:     []string{msgRosterLoaded, "2 student(s) enrolled.", "Alice", "bob@x.com"},
				wantNotOut:  []string{"456"},
				wantStudent: 2,
			},
		},
		{
			name:  "upload missing file",
			args:  []string{"teacher", "KELLY", "upload", dir + "/nope.txt"},
			extra: extra{wantOut: []string{msgRosterNotFound}},
		},
		{
			name:  "upload malformed file",
			args:  []string{"teacher", "KELLY", "UPLOAD", badRoster},
			extra: extra{wantOut: []string{msgRosterFormat, "line 2: fields"}},
		},
		{
			name:  "reports without records",
			args:  []string{"teacher", "KELLY", "display", "chart", "roster", "reconcile"},
			extra: extra{wantOut: []string{msgNoRecords, msgNoLog, msgNoStudents, "Attendance records and log agree."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			cli := setup(t, strings.Join(tt.args, "\n"))

			require.NoError(t, cli.run([]string{"attendance", "session"}))

			out := cli.stdout.String()
			for _, want := range ex.wantOut {
				assert.Contains(t, out, want)
			}
			for _, notWant := range ex.wantNotOut {
				assert.NotContains(t, out, notWant)
			}
			students, err := cli.repo.QueryAllStudents()
			require.NoError(t, err)
			assert.Len(t, students, ex.wantStudent)
		})
	}
}

func Test_commandLine_teacherMenu_reports(t *testing.T) {
	bob := student.Student{Name: "bob", Email: "bob@x.com", Passkey: 456}
	input := "student\nalice\nalice@x.com\n123\n"
	cli := setup(t, input, alice, bob)
	require.NoError(t, cli.run([]string{"attendance"}))

	cli.stdout.Reset()
	cli.in = bufio.NewReader(strings.NewReader("teacher\nKELLY\ndisplay\nchart\nreconcile\nquit\n"))
	require.NoError(t, cli.run([]string{"attendance"}))

	out := cli.stdout.String()
	today := time.Now().Format(attendance.DateLayout)
	assert.Contains(t, out, "\nAttendance Records:\nalice attended on "+today+"\n")
	assert.Contains(t, out, "Alice: 1 days\nBob: 0 days\n")
	assert.Contains(t, out, "Student Attendance by Day of the Week")
	assert.Contains(t, out, "Attendance records and log agree.")
}

func Test_commandLine_subcommands(t *testing.T) {
	dir := t.TempDir()
	roster := testutil.WriteFile(t, dir, "students.txt", "Name,Email,Passkey\nAlice,alice@x.com,123\n")

	type extra struct {
		pwd      string
		terminal bool // read the passkey with readPasswordFunc instead of cli.in
	}
	tests := []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "import: no file", args: []string{"import"}, wantErr: errHelp},
		{name: "import: bad flag", args: []string{"import", "-lol"}, wantErr: errHelp},
		{name: "import: missing file", args: []string{"import", "-file", dir + "/nope.txt"}, wantErr: student.ErrRosterNotFound},
		{name: "import", args: []string{"import", "-file", roster}},
		{name: "checkin: no email", args: []string{"checkin", "-name", "alice"}, wantErr: errHelp},
		{name: "checkin: no passkey", args: []string{"checkin", "-name", "alice", "-email", "alice@x.com"}, wantErr: errHelp},
		{name: "checkin: blank passkey", args: []string{"checkin", "-name", "alice", "-email", "alice@x.com"}, extra: extra{pwd: "  \n"}, wantErr: errHelp},
		{name: "checkin: wrong passkey", args: []string{"checkin", "-name", "alice", "-email", "alice@x.com"}, extra: extra{pwd: "124\n"}, wantErr: student.ErrInvalidCredentials},
		{name: "checkin: non-integer passkey", args: []string{"checkin", "-name", "alice", "-email", "alice@x.com"}, extra: extra{pwd: "lol\n"}, wantErr: student.ErrInvalidCredentials},
		{name: "checkin: piped passkey", args: []string{"checkin", "-name", "Alice", "-email", "alice@x.com"}, extra: extra{pwd: "123\n"}},
		{name: "checkin: piped passkey without newline", args: []string{"checkin", "-name", "Alice", "-email", "alice@x.com"}, extra: extra{pwd: "123"}},
		{name: "checkin: terminal passkey", args: []string{"checkin", "-name", "Alice", "-email", "alice@x.com"}, extra: extra{pwd: "123", terminal: true}},
		{name: "checkin: terminal, no passkey", args: []string{"checkin", "-name", "Alice", "-email", "alice@x.com"}, extra: extra{terminal: true}, wantErr: errHelp},
		{name: "display", args: []string{"display"}},
		{name: "chart", args: []string{"chart"}},
		{name: "roster", args: []string{"roster"}},
		{name: "reconcile", args: []string{"reconcile"}},
	}
	for _, tt := range tests {
		args := append([]string{"attendance"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			input := ex.pwd
			if ex.terminal {
				input = ""
			}
			cli := setup(t, input, alice)
			if ex.terminal {
				isTerminalFunc = func(fd int) bool { return true }
				readPasswordFunc = func(fd int) ([]byte, error) { return []byte(ex.pwd), nil }
			}

			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v", tt.wantErr)
			}

			if strings.HasPrefix(tt.name, "checkin") {
				wantDays := 0
				if tt.wantErr == nil {
					wantDays = 1
				}
				assert.Equal(t, wantDays, cli.attendanceOf(t, "alice"))
			}
		})
	}
}

func Test_commandLine_teacherMenu_unreadableLog(t *testing.T) {
	cli := setup(t, "teacher\nKELLY\ndisplay\nchart\nroster\nreconcile\nquit\n", alice)
	cli.log = logfile.New(t.TempDir()) // a directory cannot be read as a log

	require.NoError(t, cli.run([]string{"attendance"}))

	out := cli.stdout.String()
	assert.Contains(t, out, "Could not display: ")
	assert.Contains(t, out, "Could not chart: ")
	assert.Contains(t, out, "Could not reconcile: ")
	assert.NotContains(t, out, "Could not roster")
	assert.Contains(t, out, "Alice", "the menu keeps going after a failed report")
	assert.Equal(t, 3, cli.logger.Count("ERROR"))
}

func Test_commandLine_checkConsistency(t *testing.T) {
	cli := setup(t, "", student.Student{Name: "alice", Email: "alice@x.com", Passkey: 123, Attendance: 2})
	require.NoError(t, cli.log.Append(attendance.NewEvent("alice", time.Now())))

	cli.checkConsistency()
	assert.Equal(t, 1, cli.logger.Count("WARN"))

	// more logged than stored is expected after a re-import
	cli = setup(t, "", alice)
	require.NoError(t, cli.log.Append(attendance.NewEvent("alice", time.Now())))

	cli.checkConsistency()
	assert.Zero(t, cli.logger.Count("WARN"))
}
