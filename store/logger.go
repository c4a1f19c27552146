package store

import "fmt"

// Logger is the logging contract used across the lending packages
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
	fmt.Println(append([]any{"[WRN] STORE " + msg}, args...)...)
}

func (defLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] STORE " + msg}, args...)...)
}
