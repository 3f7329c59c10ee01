package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log level
type Level int

const (
	// DebugLevel logs are voluminous and usually disabled in production
	DebugLevel Level = iota
	// InfoLevel is the default logging priority
	InfoLevel
	// WarnLevel logs are more important than Info but don't need individual review
	WarnLevel
	// ErrorLevel logs are high-priority failures
	ErrorLevel
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level, defaulting to Info
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Format selects the output encoding
type Format int

const (
	// FormatJSON emits one JSON object per line
	FormatJSON Format = iota
	// FormatText emits human-readable key=value lines
	FormatText
)

// ParseFormat converts a string to a Format, defaulting to JSON
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "text") {
		return FormatText
	}
	return FormatJSON
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface used throughout the pipeline
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With creates a child logger with the given fields pre-set
	With(fields ...Field) Logger
}

// entry is the JSON wire form of a log line
type entry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// writerLogger writes structured entries to an io.Writer in either format
type writerLogger struct {
	writer io.Writer
	level  Level
	format Format
	fields []Field
	mu     *sync.Mutex
}

// New creates a logger writing to w at the given level and format.
func New(w io.Writer, level Level, format Format) Logger {
	return &writerLogger{
		writer: w,
		level:  level,
		format: format,
		mu:     &sync.Mutex{},
	}
}

// NewDefault creates a JSON logger on stdout at Info level.
func NewDefault() Logger {
	return New(os.Stdout, InfoLevel, FormatJSON)
}

func (l *writerLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	merged := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		merged[f.Key] = f.Value
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().Format(time.RFC3339Nano)

	if l.format == FormatText {
		fmt.Fprintf(l.writer, "%s %-5s %s", now, level.String(), msg)
		seen := make(map[string]bool, len(merged))
		for _, f := range append(append([]Field{}, l.fields...), fields...) {
			if seen[f.Key] {
				continue
			}
			seen[f.Key] = true
			fmt.Fprintf(l.writer, " %s=%v", f.Key, merged[f.Key])
		}
		fmt.Fprintln(l.writer)
		return
	}

	e := entry{Time: now, Level: level.String(), Message: msg}
	if len(merged) > 0 {
		e.Fields = merged
	}
	data, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] failed to marshal log entry: %v\n", err)
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

func (l *writerLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *writerLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *writerLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *writerLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *writerLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &writerLogger{
		writer: l.writer,
		level:  l.level,
		format: l.format,
		fields: merged,
		mu:     l.mu,
	}
}

// NopLogger discards everything (useful for tests)
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (n NopLogger) With(fields ...Field) Logger     { return n }

// NewNopLogger creates a logger that discards all output
func NewNopLogger() Logger {
	return NopLogger{}
}
