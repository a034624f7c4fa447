package core

import (
	"fmt"
	"strings"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

func (fe FieldError) String() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Error)
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	var msg string
	if err.Err != nil {
		msg = err.Err.Error()
	}
	if len(err.Fields) == 0 {
		return msg
	}
	flds := make([]string, 0, len(err.Fields))
	for _, fe := range err.Fields {
		flds = append(flds, fe.String())
	}
	if msg == "" {
		return strings.Join(flds, "; ")
	}
	return msg + " (" + strings.Join(flds, "; ") + ")"
}

func (err ValidationError) Unwrap() error { return err.Err }
