package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Logger writes formatted records to an output
type Logger struct {
	config    *Config
	formatter formatter
	mu        sync.Mutex
	writer    io.Writer
	exitFunc  func(int)
}

// NewLogger creates a new logger with the given config
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	var f formatter = &consoleFormatter{cfg: config}
	if config.Format == FormatJSON {
		f = &jsonFormatter{cfg: config}
	}

	writer := config.Output
	if writer == nil {
		writer = os.Stdout
	}

	return &Logger{
		config:    config,
		formatter: f,
		writer:    writer,
		exitFunc:  os.Exit,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	enabled := l.config.Level.Enabled(level)
	l.mu.Unlock()
	if !enabled {
		return
	}

	r := &record{
		Level:     level,
		Message:   msg,
		Fields:    fields,
		Err:       err,
		Timestamp: time.Now(),
	}
	if l.config.EnableCaller {
		r.Caller = caller(3)
	}

	out, fmtErr := l.formatter.format(r)
	if fmtErr != nil {
		fmt.Fprintf(os.Stderr, "logx: format error: %v\n", fmtErr)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, werr := l.writer.Write(out); werr != nil {
		fmt.Fprintf(os.Stderr, "logx: write error: %v\n", werr)
	}
}

// WithField creates a new entry with a field
func (l *Logger) WithField(key string, value any) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError creates a new entry with an error
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
