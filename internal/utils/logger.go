// Package utils provides utility functions for the application.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger provides leveled logging with an optional JSON-lines mode,
// selected by the JSON_LOGS environment switch at construction.
type Logger struct {
	json    bool
	service string

	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger

	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewLogger creates a text-mode logger.
func NewLogger(service string) *Logger {
	return newLogger(service, false)
}

// NewLoggerFromEnv creates a logger honoring JSON_LOGS.
func NewLoggerFromEnv(service string) *Logger {
	v := os.Getenv("JSON_LOGS")
	return newLogger(service, v == "1" || v == "true" || v == "TRUE")
}

func newLogger(service string, jsonMode bool) *Logger {
	flags := log.LstdFlags
	return &Logger{
		json:    jsonMode,
		service: service,
		info:    log.New(os.Stdout, "[INFO] ", flags),
		warn:    log.New(os.Stdout, "[WARN] ", flags),
		error:   log.New(os.Stderr, "[ERROR] ", flags),
		debug:   log.New(os.Stdout, "[DEBUG] ", flags),
		out:     os.Stdout,
		err:     os.Stderr,
	}
}

// Info logs an info message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.emit("info", l.info, l.out, format, v...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...interface{}) {
	l.emit("warn", l.warn, l.out, format, v...)
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	l.emit("error", l.error, l.err, format, v...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.emit("debug", l.debug, l.out, format, v...)
}

func (l *Logger) emit(level string, text *log.Logger, w io.Writer, format string, v ...interface{}) {
	if !l.json {
		text.Printf(format, v...)
		return
	}

	line, _ := json.Marshal(map[string]string{
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"level":   level,
		"service": l.service,
		"msg":     fmt.Sprintf(format, v...),
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	w.Write(append(line, '\n'))
}
