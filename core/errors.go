package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("core: no such name")
	ErrUnsupportedType = errors.New("core: unsupported value type")
)

// TypeMismatchError is returned when a value is read as a type it cannot be converted to.
// The stored value is left untouched.
type TypeMismatchError struct {
	Name string
	Want Type
	Got  Type
	Err  error
}

func (e *TypeMismatchError) Error() string {
	msg := "core: cannot read " + e.Got.String() + " as " + e.Want.String()
	if e.Name != "" {
		msg = fmt.Sprintf("core: %q: cannot read %s as %s", e.Name, e.Got, e.Want)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }

func mismatch(want Type, v any, err error) *TypeMismatchError {
	return &TypeMismatchError{Want: want, Got: TypeOf(v), Err: err}
}

// Named attaches a property or item name to a TypeMismatchError.
func Named(name string, err error) error {
	var tm *TypeMismatchError
	if errors.As(err, &tm) && tm.Name == "" {
		tm.Name = name
	}
	return err
}
