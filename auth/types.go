package auth

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {}

func (d defLogger) Info(msg string, args ...any) {}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(append([]any{"[WRN] AUTH " + msg}, args...)...)
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] AUTH " + msg}, args...)...)
}

// Clock is the time source used for token issuance and validation
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reports the current wall clock time in UTC
var SystemClock Clock = ClockFunc(func() time.Time {
	return time.Now().UTC()
})
