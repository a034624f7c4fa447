package reportsvc

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/juju/ansiterm"

	"github.com/kahmed003/attendance/core"
	"github.com/kahmed003/attendance/core/attendance"
	"github.com/kahmed003/attendance/core/student"
)

const (
	chartTitle = "Student Attendance by Day of the Week"
	colWidth   = 6
	bar        = "████"

	NoChartData = "No attendance data to display."
)

var (
	barColor  = ansiterm.Foreground(ansiterm.BrightBlue)
	axisColor = ansiterm.Foreground(ansiterm.Default)
	warnColor = ansiterm.Foreground(ansiterm.Yellow)
)

// ChartOptions controls the weekday chart.
type ChartOptions struct {
	Height int  // maximum number of bar rows
	Color  bool // force ANSI colors
}

// ListRecords prints every log line as-is, then each student's attendance count.
func ListRecords(w io.Writer, lines []string, students []student.Student) {
	_, _ = fmt.Fprintln(w, "\nAttendance Records:")
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w, "\nAttendance Counts:")
	for _, stu := range students {
		_, _ = fmt.Fprintf(w, "%s: %d days\n", core.Capitalize(stu.Name), stu.Attendance)
	}
}

// RosterTable prints the enrolled students. Passkeys are never shown.
func RosterTable(w io.Writer, students []student.Student) {
	table := uitable.New()
	table.MaxColWidth = 50
	table.RightAlign(2)
	table.AddRow("NAME", "EMAIL", "DAYS")
	for _, stu := range students {
		table.AddRow(core.Capitalize(stu.Name), stu.Email, stu.Attendance)
	}
	_, _ = fmt.Fprintln(w, table)
}

// Reconciliation prints the students whose stored attendance differs from the log.
func Reconciliation(w io.Writer, mismatches []attendance.Mismatch) {
	if len(mismatches) == 0 {
		_, _ = fmt.Fprintln(w, "Attendance records and log agree.")
		return
	}
	table := uitable.New()
	table.RightAlign(1)
	table.RightAlign(2)
	table.AddRow("NAME", "STORED", "LOGGED", "")
	for _, m := range mismatches {
		note := "roster re-imported?"
		if m.MissingFromLog() {
			note = "missing from log"
		}
		table.AddRow(core.Capitalize(m.Name), m.Stored, m.Logged, note)
	}
	_, _ = fmt.Fprintln(w, table)
}

// WeekdayChart draws a bar chart with weekdays on the x-axis and check-ins on the y-axis.
// Bars are scaled down when the busiest day exceeds opts.Height.
// Nothing is drawn when there are no check-ins.
func WeekdayChart(out io.Writer, counts attendance.WeekdayCounts, skipped int, opts ChartOptions) {
	w := ansiterm.NewWriter(out)
	if opts.Color {
		w.SetColorCapable(true)
	}
	if counts.Total() == 0 {
		skippedNotice(w, skipped)
		_, _ = fmt.Fprintln(w, NoChartData)
		return
	}

	max := counts.Max()
	rows := max
	if opts.Height > 0 && rows > opts.Height {
		rows = opts.Height
	}
	heights := make([]int, len(counts))
	for i, n := range counts {
		if n > 0 {
			heights[i] = int(math.Ceil(float64(n*rows) / float64(max)))
		}
	}

	_, _ = fmt.Fprintf(w, "\n%s\n\n", chartTitle)
	for level := rows; level >= 1; level-- {
		yVal := int(math.Round(float64(level*max) / float64(rows)))
		axisColor.Fprintf(w, "%4d |", yVal)
		for _, h := range heights {
			if h >= level {
				_, _ = fmt.Fprint(w, " ")
				barColor.Fprintf(w, "%s", bar)
				_, _ = fmt.Fprint(w, " ")
			} else {
				_, _ = fmt.Fprint(w, strings.Repeat(" ", colWidth))
			}
		}
		_, _ = fmt.Fprintln(w)
	}
	axisColor.Fprintf(w, "     +%s\n", strings.Repeat("-", colWidth*len(counts)))

	_, _ = fmt.Fprint(w, "      ")
	for _, day := range attendance.Weekdays {
		_, _ = fmt.Fprintf(w, " %-*s", colWidth-1, day.String()[:3])
	}
	_, _ = fmt.Fprint(w, "\n      ")
	for _, n := range counts {
		_, _ = fmt.Fprintf(w, " %-*d", colWidth-1, n)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "\nDays of the Week (x) / Number of Students Attended (y), total %d\n", counts.Total())
	skippedNotice(w, skipped)
}

func skippedNotice(w *ansiterm.Writer, skipped int) {
	if skipped > 0 {
		warnColor.Fprintf(w, "%d unreadable log line(s) skipped\n", skipped)
	}
}
