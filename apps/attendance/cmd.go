package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kahmed003/attendance/core"
	"github.com/kahmed003/attendance/core/attendance"
	"github.com/kahmed003/attendance/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = term.IsTerminal   // mockable

	errHelp      = errors.New("help provided")
	errLockedOut = errors.New("account temporarily locked")
)

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	svc     *student.Service
	log     attendance.Log
	mailSvc core.EmailService
	in      *bufio.Reader
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  [-data-dir DIR] [COMMAND]")
	cli.println("Commands:")
	cli.println("  session                      - interactive student/teacher session (default)")
	cli.println("  import -file PATH            - replace the roster with the students listed in PATH")
	cli.println("  checkin -name NAME -email E  - check a student in; the passkey will be prompted")
	cli.println("  display                      - show attendance records and counts")
	cli.println("  chart                        - show attendance by day of the week")
	cli.println("  roster                       - list enrolled students")
	cli.println("  reconcile                    - compare stored attendance with the attendance log")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		return cli.session()
	}

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importCmd.SetOutput(cli.out)
	importFile := importCmd.String("file", "", "Roster file: a header line, then Name,Email,Passkey lines.")

	checkinCmd := flag.NewFlagSet("checkin", flag.ContinueOnError)
	checkinCmd.SetOutput(cli.out)
	checkinName := checkinCmd.String("name", "", "The student's name.")
	checkinEmail := checkinCmd.String("email", "", "The student's email. The passkey will be prompted next.")

	switch args[1] {
	case "session":
		return cli.session()
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(*importFile)
	case "checkin":
		if err := checkinCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *checkinName == "" || *checkinEmail == "" {
			checkinCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptSecret("Enter valid student passkey: ")
		if err != nil && err != io.EOF {
			return err
		}
		if core.CleanString(pwd) == "" {
			checkinCmd.Usage()
			return errHelp
		}
		ok, err := cli.checkIn(student.Credentials{Name: *checkinName, Email: *checkinEmail, Passkey: pwd})
		if err != nil {
			return err
		}
		if !ok {
			return student.ErrInvalidCredentials
		}
		return nil
	case "display":
		return cli.display()
	case "chart":
		return cli.chart()
	case "roster":
		return cli.roster()
	case "reconcile":
		return cli.reconcile()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) print(a ...interface{}) {
	_, _ = fmt.Fprint(cli.out, a...)
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

// prompt prints msg and reads one line of input, without its line ending.
// io.EOF is returned once the input is exhausted.
func (cli *commandLine) prompt(msg string) (string, error) {
	cli.print(msg)
	line, err := cli.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a value without echo when stdin is a terminal.
func (cli *commandLine) promptSecret(msg string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminalFunc(fd) {
		return cli.prompt(msg)
	}
	cli.print(msg)
	secret, err := readPasswordFunc(fd)
	cli.println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
