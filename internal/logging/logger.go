// Package logging writes leveled, categorized lines to .esencia/logs/esencia.log
// so resolve failures and manifest reloads can be inspected after the fact.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vladimir-polyakov/esencia/internal/config"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config value to a Level.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("logging: unknown level %q", value)
	}
}

// Category groups related log messages.
type Category string

const (
	CatRegistry Category = "registry"
	CatManifest Category = "manifest"
	CatResolve  Category = "resolve"
	CatCache    Category = "cache"
	CatServer   Category = "server"
	CatWatch    Category = "watch"
	CatConfig   Category = "config"
	CatTUI      Category = "tui"
)

// Logger appends timestamped lines to a writer.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	minLevel Level
	clock    func() time.Time
}

// New creates (or reuses) the log file for the given project directory.
func New(projectDir string) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.Dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "esencia.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f, writer: f, minLevel: LevelInfo, clock: time.Now}, nil
}

// NewWriter logs to w. Useful for tests and for mirroring to stderr.
func NewWriter(w io.Writer) *Logger {
	return &Logger{writer: w, minLevel: LevelInfo, clock: time.Now}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// SetMinLevel sets the minimum level written.
func (l *Logger) SetMinLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Debug logs at debug level.
func (l *Logger) Debug(cat Category, msg string, fields ...any) {
	l.log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func (l *Logger) Info(cat Category, msg string, fields ...any) {
	l.log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func (l *Logger) Warn(cat Category, msg string, fields ...any) {
	l.log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func (l *Logger) Error(cat Category, msg string, fields ...any) {
	l.log(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg with err attached as a field.
func (l *Logger) ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	l.log(LevelError, cat, msg, fields...)
}

func (l *Logger) log(level Level, cat Category, msg string, fields ...any) {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=", fields[len(fields)-1])
	}
	l.write(level, cat, b.String())
}

func (l *Logger) write(level Level, cat Category, line string) {
	if l == nil || l.writer == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}
	timestamp := l.clock().Format("2006-01-02T15:04:05")
	fmt.Fprintf(l.writer, "%s [%s] [%s] %s\n", timestamp, level, cat, line)
}
