// Package logging implements core.Logger on top of log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/internal/config"
)

var _ core.Logger = (*Logger)(nil)

// Logger fans every record out to all of its slog loggers.
type Logger struct {
	loggers []*slog.Logger
	closers []io.Closer
}

// New creates a console logger writing text records to console. With the
// file log type, json records additionally go to a rotated file.
func New(settings *config.LoggerSettings, console io.Writer) (*Logger, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := parseLevel(settings.LogLevel)
	l := NewConsoleLogger(level, console)

	if settings.LogType == config.LogTypeFile {
		writer := &lumberjack.Logger{
			Filename:   settings.FilePath,
			MaxSize:    settings.MaxSize,
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAge,
			Compress:   true,
		}
		l.loggers = append(l.loggers, slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})))
		l.closers = append(l.closers, writer)
	}

	return l, nil
}

// NewConsoleLogger writes text records to w.
func NewConsoleLogger(level slog.Level, w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{loggers: []*slog.Logger{slog.New(handler)}}
}

func parseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarning:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) log(level slog.Level, msg string) {
	for _, logger := range l.loggers {
		logger.Log(context.Background(), level, msg)
	}
}

func (l *Logger) Debug(msg string) {
	l.log(slog.LevelDebug, msg)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(msg string) {
	l.log(slog.LevelInfo, msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(msg string) {
	l.log(slog.LevelWarn, msg)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(slog.LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) {
	l.log(slog.LevelError, msg)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, fmt.Sprintf(format, args...))
}

// Close flushes and closes log files.
func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
