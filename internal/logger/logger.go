// Package logger is the process-wide logging facade: slog underneath,
// printf-style helpers on top. Output and level are settable once at startup
// from the runtime config.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"log/slog"
)

var (
	level   slog.LevelVar
	mu      sync.RWMutex
	current *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	current = build(os.Stdout)
}

func build(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetOutput redirects all subsequent log lines, typically to a MultiWriter
// over stdout and the log file.
func SetOutput(w io.Writer) {
	mu.Lock()
	current = build(w)
	mu.Unlock()
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// SetLevel applies a named level from config; unknown names fall back to info.
func SetLevel(name string) {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		level.Set(lvl)
		return
	}
	level.Set(slog.LevelInfo)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Debugf(format string, v ...any) {
	get().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	get().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	get().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	get().Error(fmt.Sprintf(format, v...))
}
