package student

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/kahmed003/attendance/core"
)

const rosterFields = 3 // Name,Email,Passkey

// ErrRosterFormat is wrapped by the core.ValidationError returned for a malformed roster.
var ErrRosterFormat = errors.New("file format error: expected Name,Email,Passkey")

// ParseRoster reads a roster: a header line followed by `Name,Email,Passkey` lines.
// Blank lines are ignored. Every line is validated before anything is returned,
// so a malformed roster yields no students at all.
func ParseRoster(r io.Reader) ([]Student, error) {
	var (
		students []Student
		fldErrs  []core.FieldError
		seen     = make(map[string]int)
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 { // header
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		field := func(name string) string { return fmt.Sprintf("line %d: %s", lineNo, name) }

		parts := strings.Split(line, ",")
		if len(parts) != rosterFields {
			fldErrs = append(fldErrs, core.FieldError{
				Field: field("fields"),
				Error: fmt.Sprintf("expected %d fields, got %d", rosterFields, len(parts)),
			})
			continue
		}

		ns := NewStudent{Name: parts[0], Email: parts[1], Passkey: parts[2]}
		stu, err := ns.Validate()
		if err != nil {
			var vErr *core.ValidationError
			if errors.As(err, &vErr) {
				for _, fe := range vErr.Fields {
					fldErrs = append(fldErrs, core.FieldError{Field: field(fe.Field), Error: fe.Error})
				}
			} else {
				for _, fe := range core.FieldErrors(err, "row") {
					fldErrs = append(fldErrs, core.FieldError{Field: field(fe.Field), Error: fe.Error})
				}
			}
			continue
		}
		if prev, ok := seen[stu.Name]; ok {
			fldErrs = append(fldErrs, core.FieldError{
				Field: field("name"),
				Error: fmt.Sprintf("%q already listed on line %d", stu.Name, prev),
			})
			continue
		}
		seen[stu.Name] = lineNo
		students = append(students, stu)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading roster")
	}

	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(ErrRosterFormat, fldErrs...)
	}
	return students, nil
}
