package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kahmed003/attendance/core"
	"github.com/kahmed003/attendance/core/attendance"
	"github.com/kahmed003/attendance/core/student"
	"github.com/kahmed003/attendance/services/email"
	"github.com/kahmed003/attendance/services/logger"
	"github.com/kahmed003/attendance/storage/database/jsonfile"
	"github.com/kahmed003/attendance/storage/logfile"
)

func main() {
	stdLogger := log.New(os.Stderr, "ATTENDANCE : ", log.LstdFlags)

	conf, err := core.NewConfig()
	if err != nil {
		stdLogger.Fatalf("loading config: %v", err)
	}

	global := flag.NewFlagSet("attendance", flag.ExitOnError)
	dataDir := global.String("data-dir", conf.DataDir, "Directory holding the student records and the attendance log.")
	_ = global.Parse(os.Args[1:])
	conf.DataDir = *dataDir

	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(conf.RollbarToken != "" && !conf.Debug)
	defer logger.Close()

	// set up storage
	db, err := jsonfiledb.Open(conf.StorePath())
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening student records: %v", err), err)
	}
	if db.IsNew() {
		fmt.Println("No previous student data found. Please upload a student list.")
	} else {
		fmt.Println("Student data loaded automatically!")
	}
	attendanceLog := logfile.New(conf.LogPath())

	// start CLI
	cli := &commandLine{
		conf:    conf,
		logger:  logger,
		svc:     student.NewService(jsonfiledb.NewStudentRepository(db), attendanceLog, logger),
		log:     attendanceLog,
		mailSvc: emailsvc.NewService(conf, os.Stderr),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	cli.checkConsistency()

	args := append([]string{os.Args[0]}, global.Args()...)
	if err := cli.run(args); err != nil {
		if err != errHelp && err != errLockedOut {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		logger.Close()
		os.Exit(1)
	}
}

// checkConsistency warns about check-ins that were stored but never logged.
func (cli *commandLine) checkConsistency() {
	lines, err := cli.log.ReadAll()
	if err != nil {
		if err != attendance.ErrNoRecords {
			cli.logger.Warn("reading attendance log", err)
		}
		return
	}
	stored, err := cli.svc.AttendanceCounts()
	if err != nil {
		cli.logger.Warn("reading student records", err)
		return
	}
	for _, m := range attendance.Reconcile(stored, attendance.CountByStudent(lines)) {
		if m.MissingFromLog() {
			cli.logger.Warn("attendance records diverged: stored check-ins missing from log",
				map[string]interface{}{"student": m.Name, "stored": m.Stored, "logged": m.Logged})
		}
	}
}
