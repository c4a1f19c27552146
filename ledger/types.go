package ledger

import (
	"fmt"
	"time"
)

const (
	// MaxOpenBorrows is the default number of books a reader may hold at once
	MaxOpenBorrows = 3
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type defLogger struct{}

func (defLogger) Debug(msg string, args ...any) {}

func (defLogger) Info(msg string, args ...any) {}

func (defLogger) Warn(msg string, args ...any) {
	fmt.Println(append([]any{"[WRN] LEDGER " + msg}, args...)...)
}

func (defLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] LEDGER " + msg}, args...)...)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
