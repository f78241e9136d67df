package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
)

// DebugEnabled returns true if debug mode is enabled via TD_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TD_DEBUG") != ""
}

// SetOutput redirects warning and error output, returning the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	output = w
	return prev
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		write("debug", format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		write("debug", "%s", fmt.Sprintln(args...))
	}
}

// Warnf prints a formatted warning. Warnings are always written.
func Warnf(format string, args ...interface{}) {
	write("warn", format, args...)
}

// Errorf prints a formatted error. Errors are always written.
func Errorf(format string, args ...interface{}) {
	write("error", format, args...)
}

func write(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "[%s] %s", level, msg)
}
