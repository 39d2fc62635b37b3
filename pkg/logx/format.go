package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fields is a map of structured data
type Fields map[string]any

// record is one log line before formatting
type record struct {
	Level     Level
	Message   string
	Fields    Fields
	Err       error
	Timestamp time.Time
	Caller    string
}

type formatter interface {
	format(r *record) ([]byte, error)
}

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
	colorCyan  = "\033[36m"
)

var levelColors = map[Level]string{
	LevelDebug: "\033[1;36m",
	LevelInfo:  "\033[1;32m",
	LevelWarn:  "\033[1;33m",
	LevelError: "\033[1;31m",
	LevelFatal: "\033[1;31m",
}

type consoleFormatter struct {
	cfg *Config
}

func (f *consoleFormatter) paint(color, s string) string {
	if !f.cfg.EnableColors {
		return s
	}
	return color + s + colorReset
}

func (f *consoleFormatter) format(r *record) ([]byte, error) {
	var b strings.Builder

	b.WriteString(f.paint(colorGray, r.Timestamp.Format(f.cfg.TimeFormat)))
	b.WriteString(" ")
	b.WriteString(f.paint(levelColors[r.Level], fmt.Sprintf("[%-5s]", r.Level.String())))
	b.WriteString(" ")
	if r.Caller != "" {
		b.WriteString(f.paint(colorGray, "["+r.Caller+"] "))
	}
	b.WriteString(r.Message)

	if len(r.Fields) > 0 {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, r.Fields[k]))
		}
		b.WriteString(" ")
		b.WriteString(f.paint(colorCyan, strings.Join(parts, " ")))
	}

	if r.Err != nil {
		b.WriteString("\n")
		b.WriteString(f.paint(colorRed, "  ╰─→ error: "+r.Err.Error()))
	}
	b.WriteString("\n")

	return []byte(b.String()), nil
}

type jsonFormatter struct {
	cfg *Config
}

func (f *jsonFormatter) format(r *record) ([]byte, error) {
	data := make(map[string]any, len(r.Fields)+4)
	for k, v := range r.Fields {
		data[k] = v
	}
	data["level"] = r.Level.String()
	data["message"] = r.Message
	data["timestamp"] = r.Timestamp.Format(time.RFC3339Nano)
	if r.Caller != "" {
		data["caller"] = r.Caller
	}
	if r.Err != nil {
		data["error"] = r.Err.Error()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
