package attendance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DateLayout is the calendar date format used in the attendance log.
const DateLayout = "2006-01-02"

const attendedOn = " attended on "

var (
	// errors
	ErrNoRecords  = errors.New("no attendance records found")
	ErrNotAnEvent = errors.New("not an attendance line")
)

type (
	// Event is one successful check-in.
	// ID is never serialized to the log; it only correlates application logs.
	Event struct {
		ID   uuid.UUID
		Name string
		Date time.Time
	}

	// Log is an append-only record of check-in events.
	Log interface {
		Append(ev Event) error
		// ReadAll returns every raw line of the log, in order.
		// ErrNoRecords is returned when the log does not exist yet.
		ReadAll() ([]string, error)
	}
)

func NewEvent(name string, at time.Time) Event {
	return Event{
		ID:   uuid.New(),
		Name: name,
		Date: at,
	}
}

// DateString returns the event's calendar date.
func (ev Event) DateString() string {
	return ev.Date.Format(DateLayout)
}

// String returns the log line for the event, without the trailing newline.
func (ev Event) String() string {
	return ev.Name + attendedOn + ev.DateString()
}

// ParseLine parses a log line written by Event.String.
func ParseLine(line string) (Event, error) {
	line = strings.TrimSpace(line)
	idx := strings.Index(line, attendedOn)
	if idx < 0 {
		return Event{}, ErrNotAnEvent
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(line[idx+len(attendedOn):]))
	if err != nil {
		return Event{}, errors.Wrapf(err, "parsing date of %q", line)
	}
	return Event{Name: line[:idx], Date: date}, nil
}
