package student

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/kahmed003/attendance/core"
)

// Student is one enrolled student. Name is the unique key.
type Student struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Passkey    int    `json:"passkey"`
	Attendance int    `json:"attendance"`
}

// Matches reports whether the claimed email and passkey are this student's.
func (s Student) Matches(email string, passkey int) bool {
	return s.Email == email && s.Passkey == passkey
}

// NewStudent contains one roster row, as read from the roster file.
// Email is stored as given: rosters may carry school ids instead of addresses.
type NewStudent struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email"`
	Passkey string `json:"passkey" validate:"required"`
}

// Validate normalizes the row and returns the Student it describes.
func (ns *NewStudent) Validate() (Student, error) {
	ns.Name = core.CleanString(ns.Name, true /* lower */)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Passkey = core.CleanString(ns.Passkey)

	if err := core.Validate.Struct(ns); err != nil {
		return Student{}, err
	}
	passkey, err := strconv.Atoi(ns.Passkey)
	if err != nil {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "passkey", Error: "passkey must be a whole number"})
	}
	return Student{
		Name:    ns.Name,
		Email:   ns.Email,
		Passkey: passkey,
	}, nil
}

// Credentials are what a student enters to check in.
type Credentials struct {
	Name    string
	Email   string
	Passkey string
}

// Clean normalizes the credentials and parses the passkey.
func (c *Credentials) Clean() (int, error) {
	c.Name = core.CleanString(c.Name, true /* lower */)
	c.Email = core.CleanString(c.Email, true /* lower */)
	c.Passkey = core.CleanString(c.Passkey)

	passkey, err := strconv.Atoi(c.Passkey)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPasskey, "%q", c.Passkey)
	}
	return passkey, nil
}
