package attendance

import (
	"sort"
	"time"
)

// Weekdays lists the days of the week in report order.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// WeekdayCounts holds check-in counts indexed Monday (0) through Sunday (6).
type WeekdayCounts [7]int

func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func (wc WeekdayCounts) Get(d time.Weekday) int {
	return wc[weekdayIndex(d)]
}

func (wc WeekdayCounts) Total() int {
	var total int
	for _, n := range wc {
		total += n
	}
	return total
}

func (wc WeekdayCounts) Max() int {
	var max int
	for _, n := range wc {
		if n > max {
			max = n
		}
	}
	return max
}

// CountByWeekday buckets log lines by the weekday of their date.
// Lines that are not check-in events are skipped and counted.
func CountByWeekday(lines []string) (counts WeekdayCounts, skipped int) {
	for _, line := range lines {
		ev, err := ParseLine(line)
		if err != nil {
			skipped++
			continue
		}
		counts[weekdayIndex(ev.Date.Weekday())]++
	}
	return counts, skipped
}

// CountByStudent returns the number of check-in lines per student name.
func CountByStudent(lines []string) map[string]int {
	counts := make(map[string]int)
	for _, line := range lines {
		if ev, err := ParseLine(line); err == nil {
			counts[ev.Name]++
		}
	}
	return counts
}

// Mismatch is a student whose stored attendance differs from the log.
type Mismatch struct {
	Name   string
	Stored int
	Logged int
}

// Reconcile compares stored attendance counts with log counts.
// Only names present in `stored` are checked: the log outlives roster re-imports.
func Reconcile(stored, logged map[string]int) []Mismatch {
	var mismatches []Mismatch
	for name, n := range stored {
		if logged[name] != n {
			mismatches = append(mismatches, Mismatch{Name: name, Stored: n, Logged: logged[name]})
		}
	}
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Name < mismatches[j].Name })
	return mismatches
}

// MissingFromLog reports check-ins that were stored but never logged.
// The opposite drift is expected after a roster re-import resets counts.
func (m Mismatch) MissingFromLog() bool {
	return m.Stored > m.Logged
}
