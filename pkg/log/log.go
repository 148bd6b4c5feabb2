package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Color codes
const (
	reset     = "\033[0m"
	dim       = "\033[2m"
	green     = "\033[32m"
	blue      = "\033[34m"
	magenta   = "\033[35m"
	cyan      = "\033[36m"
	white     = "\033[37m"
	boldRed   = "\033[1;31m"
	boldGreen = "\033[1;32m"
	boldYell  = "\033[1;33m"
)

// Emojis for different log types
const (
	infoEmoji    = "ℹ️ "
	successEmoji = "✅ "
	errorEmoji   = "❌ "
	warnEmoji    = "⚠️ "
	stepEmoji    = "👉 "
	debugEmoji   = "🔍 "
	gitEmoji     = "📦 "
	branchEmoji  = "🌿 "
	prEmoji      = "🔄 "
)

// Logger writes human-readable progress messages to stderr.
// Stdout is reserved for the JSON result, so nothing here may touch it.
type Logger struct {
	debug bool
	out   io.Writer
}

// New creates a new logger instance
func New(debug bool) *Logger {
	return &Logger{debug: debug, out: os.Stderr}
}

// formatMessage wraps long lines at 80 columns
func formatMessage(msg string) string {
	width := 80
	lines := strings.Split(msg, "\n")
	var formatted []string

	for _, line := range lines {
		if len(line) <= width {
			formatted = append(formatted, line)
			continue
		}

		words := strings.Fields(line)
		current := ""
		for _, word := range words {
			if len(current)+len(word)+1 > width {
				formatted = append(formatted, current)
				current = word
			} else {
				if current == "" {
					current = word
				} else {
					current += " " + word
				}
			}
		}
		if current != "" {
			formatted = append(formatted, current)
		}
	}

	return strings.Join(formatted, "\n")
}

func (l *Logger) print(color, emoji, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "%s%s%s%s\n", color, emoji, formatMessage(msg), reset)
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.print(blue, infoEmoji, format, args...)
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	l.print(boldGreen, successEmoji, format, args...)
}

// Error prints an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.print(boldRed, errorEmoji, format, args...)
}

// Warning prints a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.print(boldYell, warnEmoji, format, args...)
}

// Step prints a step message
func (l *Logger) Step(format string, args ...interface{}) {
	l.print(cyan, stepEmoji, format, args...)
}

// Debug prints a debug message if debug is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.print(dim, debugEmoji, format, args...)
}

// Git prints a git-related message
func (l *Logger) Git(format string, args ...interface{}) {
	l.print(white, gitEmoji, format, args...)
}

// Branch prints a branch-related message
func (l *Logger) Branch(format string, args ...interface{}) {
	l.print(green, branchEmoji, format, args...)
}

// PR prints a review-related message
func (l *Logger) PR(format string, args ...interface{}) {
	l.print(magenta, prEmoji, format, args...)
}

// IsDebug returns whether debug logging is enabled
func (l *Logger) IsDebug() bool {
	return l.debug
}
