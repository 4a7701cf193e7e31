// Package notify provides listquery.Notifier implementations for terminal
// and log output.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/tradeboard/pkg/listquery"
)

var (
	_ listquery.Notifier = (*Logger)(nil)
	_ listquery.Notifier = (*Writer)(nil)
)

// Logger sends notifications to a zap logger at the matching level.
type Logger struct {
	log *zap.Logger
}

// NewLogger returns a Logger writing to log. A nil log discards everything.
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log}
}

// Notify implements listquery.Notifier.
func (l *Logger) Notify(level listquery.Level, message string) {
	if ce := l.log.Check(zapLevel(level), message); ce != nil {
		ce.Write(zap.String("notification", string(level)))
	}
}

func zapLevel(level listquery.Level) zapcore.Level {
	switch level {
	case listquery.LevelError:
		return zapcore.ErrorLevel
	case listquery.LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Writer prints notifications as "[LEVEL] message" lines, the terminal
// equivalent of a toast.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify implements listquery.Notifier.
func (n *Writer) Notify(level listquery.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "[%s] %s\n", strings.ToUpper(string(level)), message)
}

// Multi fans a notification out to every notifier in order.
type Multi []listquery.Notifier

// Notify implements listquery.Notifier.
func (m Multi) Notify(level listquery.Level, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(level, message)
		}
	}
}
