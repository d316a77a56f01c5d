package config

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Log level constants
const (
	LogLevelInfo    = "info"
	LogLevelDebug   = "debug"
	LogLevelError   = "error"
	LogLevelWarning = "warning"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Environment variables read by LoggerSettingsFromEnv.
const (
	EnvLogLevel      = "NEXUSPROBE_LOG_LEVEL"
	EnvLogFile       = "NEXUSPROBE_LOG_FILE"
	EnvLogMaxSize    = "NEXUSPROBE_LOG_MAX_SIZE"
	EnvLogMaxBackups = "NEXUSPROBE_LOG_MAX_BACKUPS"
	EnvLogMaxAge     = "NEXUSPROBE_LOG_MAX_AGE"
)

// LoggerSettings holds configuration settings for logging. Console output
// is always on, the file type additionally writes a rotated json log.
type LoggerSettings struct {
	LogLevel   string `validate:"required,oneof=info debug error warning"`
	LogType    string `validate:"required,oneof=console file"`
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func DefaultLoggerSettings() *LoggerSettings {
	return &LoggerSettings{
		LogLevel: LogLevelInfo,
		LogType:  LogTypeConsole,
	}
}

// LoggerSettingsFromEnv reads logger settings. Setting a log file switches
// to the file type with rotation defaults of 10MB, 3 backups, 28 days.
func LoggerSettingsFromEnv(getenv Getenv) (*LoggerSettings, error) {
	s := DefaultLoggerSettings()
	if lvl := getenv(EnvLogLevel); lvl != "" {
		s.LogLevel = lvl
	}

	if path := getenv(EnvLogFile); path != "" {
		s.LogType = LogTypeFile
		s.FilePath = path

		var err error
		if s.MaxSize, err = intOr(getenv, EnvLogMaxSize, 10); err != nil {
			return nil, err
		}
		if s.MaxBackups, err = intOr(getenv, EnvLogMaxBackups, 3); err != nil {
			return nil, err
		}
		if s.MaxAge, err = intOr(getenv, EnvLogMaxAge, 28); err != nil {
			return nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func intOr(getenv Getenv, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Validate checks that all fields in LoggerSettings are valid
func (s *LoggerSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for LoggerSettings: %w", err)
	}

	if s.LogType == LogTypeFile {
		if s.FilePath == "" {
			return fmt.Errorf("file path is required for file logger")
		}
		if s.MaxSize < 1 || s.MaxSize > 100 {
			return fmt.Errorf("max size must be between 1 and 100 MB")
		}
		if s.MaxBackups < 1 || s.MaxBackups > 10 {
			return fmt.Errorf("max backups must be between 1 and 10")
		}
		if s.MaxAge < 1 || s.MaxAge > 365 {
			return fmt.Errorf("max age must be between 1 and 365 days")
		}
	}

	return nil
}
