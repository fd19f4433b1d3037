package usecases

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds surfaced to the route layer. Use cases return them through fail,
// which attaches the caller-facing message.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Message returns the caller-facing part of a wrapped use case error.
func Message(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	return err.Error()
}

type userError struct {
	msg  string
	kind error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

func fail(kind error, format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...), kind: kind}
}

// notFound maps gorm's missing-row error onto ErrNotFound with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(ErrNotFound, "%s", msg)
	}
	return err
}
