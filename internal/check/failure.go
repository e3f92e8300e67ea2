package check

import (
	"errors"
	"fmt"
)

// Exit codes shared by every suite.
const (
	ExitOK         = 0
	ExitFailure    = 1 // Generic failure (browser suites)
	ExitUnexpected = 9 // Network or unexpected error
)

// Failure aborts a suite with a specific exit code.
type Failure struct {
	Code    int
	Message string
	Err     error // Optional cause
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Failf returns a *Failure with the given exit code.
func Failf(code int, format string, args ...any) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a *Failure with the given exit code that keeps err as its
// cause. The message is "<msg> -> <err>".
func Wrap(code int, err error, msg string) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf("%s -> %v", msg, err), Err: err}
}

// ExitCode maps a suite result to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return ExitUnexpected
}
