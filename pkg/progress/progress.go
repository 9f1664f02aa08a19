// Package progress carries human-readable status updates from a control
// cycle to whoever is watching: the log, browsers and MQTT subscribers.
package progress

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is the severity of a progress event.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Event is one status update.
type Event struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// NewEvent stamps an event with the current time.
func NewEvent(level Level, msg string) Event {
	return Event{Level: level, Message: msg, Time: time.Now()}
}

// String renders the event as a log line, e.g. "[INFO] [2024-05-01 08:00:00] 已连接".
func (e Event) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Level, e.Time.Format(time.DateTime), e.Message)
}

// Reporter receives progress messages. Implementations must not block the
// caller for long.
type Reporter interface {
	Report(level Level, msg string)
}

// Reportf formats and reports a message.
func Reportf(r Reporter, level Level, format string, args ...any) {
	r.Report(level, fmt.Sprintf(format, args...))
}

// Nop discards every message.
type Nop struct{}

func (Nop) Report(Level, string) {}

// LogReporter writes progress messages to the global zerolog logger.
type LogReporter struct{}

func (LogReporter) Report(level Level, msg string) {
	log.WithLevel(zerologLevel(level)).Str("component", "progress").Msg(msg)
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Multi fans a message out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(level Level, msg string) {
	for _, r := range m {
		if r != nil {
			r.Report(level, msg)
		}
	}
}
