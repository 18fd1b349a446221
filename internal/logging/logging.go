// Package logging provides the leveled logger used across the distiller: a
// concise console stream plus a detailed timestamped log file. Implementations
// are safe for concurrent use.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level orders log severities.
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
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// Logger writes leveled messages to a console writer and, optionally, a log
// file. The console honors the configured minimum level; the file always
// receives everything down to debug.
type Logger struct {
	mu           sync.Mutex
	console      io.Writer
	consoleLevel Level
	colorize     bool
	file         *os.File
	filePath     string
}

// New creates a logger writing to stdout and a timestamped file under logDir.
// verbose lowers the console threshold to debug.
func New(logDir string, verbose bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(logDir, "log_"+stamp+".txt")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &Logger{
		console:      os.Stdout,
		consoleLevel: LevelInfo,
		colorize:     isatty.IsTerminal(os.Stdout.Fd()) && !color.NoColor,
		file:         f,
		filePath:     path,
	}
	if verbose {
		l.consoleLevel = LevelDebug
	}
	l.Infof("Logging initialized. Log file: %s", path)
	return l, nil
}

// NewWriter creates a console-only logger for tests and embedding.
func NewWriter(w io.Writer, verbose bool) *Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return &Logger{console: w, consoleLevel: level}
}

// FilePath returns the path of the log file, if any.
func (l *Logger) FilePath() string { return l.filePath }

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.console != nil && level >= l.consoleLevel {
		label := fmt.Sprintf("%-8s", level.String())
		if l.colorize {
			if c, ok := levelColors[level]; ok {
				label = c.Sprint(label)
			}
		}
		fmt.Fprintf(l.console, "%s | %s\n", label, msg)
	}
	if l.file != nil {
		ts := time.Now().Format("2006-01-02 15:04:05")
		for _, line := range strings.Split(msg, "\n") {
			fmt.Fprintf(l.file, "%s | %-8s | %s\n", ts, level.String(), line)
		}
	}
}
