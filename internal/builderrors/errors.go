// Package builderrors defines the error taxonomy shared by the generation
// pipeline. Configuration and validation errors are build failures; anything
// else returned by the pipeline is treated as an internal error.
package builderrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error
type Kind int

const (
	// Configuration errors are fatal and raised before the engine is invoked
	Configuration Kind = iota
	// Validation errors are reported by a completed engine run
	Validation
	// Registration errors are non-fatal namespace registration issues
	Registration
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Validation:
		return "validation"
	case Registration:
		return "registration"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "translate languages"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configurationf builds a configuration error.
func Configurationf(op, format string, args ...any) *Error {
	return &Error{Kind: Configuration, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// WrapConfiguration classifies err as a configuration error.
func WrapConfiguration(op string, err error, msg string) *Error {
	return &Error{Kind: Configuration, Op: op, Msg: msg, Err: err}
}

// Validationf builds a validation failure.
func Validationf(op, format string, args ...any) *Error {
	return &Error{Kind: Validation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// RegistrationWarning builds a non-fatal registration error for path.
func RegistrationWarning(path string, err error) *Error {
	return &Error{Kind: Registration, Op: "register module", Msg: path, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Configuration
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Validation
}

// IsBuildFailure reports whether err should be surfaced as a build failure
// rather than an internal error.
func IsBuildFailure(err error) bool {
	return IsConfiguration(err) || IsValidation(err)
}
