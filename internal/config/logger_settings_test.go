package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerSettingsValidation(t *testing.T) {
	tests := []struct {
		name          string
		settings      *LoggerSettings
		expectedError bool
	}{
		{
			name: "valid console logger",
			settings: &LoggerSettings{
				LogLevel: LogLevelInfo,
				LogType:  LogTypeConsole,
			},
			expectedError: false,
		},
		{
			name: "valid file logger with rotation",
			settings: &LoggerSettings{
				LogLevel:   LogLevelDebug,
				LogType:    LogTypeFile,
				FilePath:   "/tmp/nexusprobe.log",
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			},
			expectedError: false,
		},
		{
			name: "invalid log level",
			settings: &LoggerSettings{
				LogLevel: "verbose",
				LogType:  LogTypeConsole,
			},
			expectedError: true,
		},
		{
			name: "file logger missing file path",
			settings: &LoggerSettings{
				LogLevel:   LogLevelInfo,
				LogType:    LogTypeFile,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			},
			expectedError: true,
		},
		{
			name: "file logger invalid max age",
			settings: &LoggerSettings{
				LogLevel:   LogLevelInfo,
				LogType:    LogTypeFile,
				FilePath:   "/tmp/nexusprobe.log",
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     400,
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()

			if tt.expectedError {
				assert.Error(t, err, "expected an error")
			} else {
				assert.NoError(t, err, "expected no error")
			}
		})
	}
}

func TestLoggerSettingsFromEnv(t *testing.T) {
	s, err := LoggerSettingsFromEnv(envOf(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultLoggerSettings(), s)

	s, err = LoggerSettingsFromEnv(envOf(map[string]string{
		EnvLogLevel:   LogLevelDebug,
		EnvLogFile:    "/tmp/nexusprobe.log",
		EnvLogMaxSize: "5",
	}))
	require.NoError(t, err)
	assert.Equal(t, &LoggerSettings{
		LogLevel:   LogLevelDebug,
		LogType:    LogTypeFile,
		FilePath:   "/tmp/nexusprobe.log",
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
	}, s)

	_, err = LoggerSettingsFromEnv(envOf(map[string]string{
		EnvLogFile:    "/tmp/nexusprobe.log",
		EnvLogMaxSize: "big",
	}))
	assert.ErrorContains(t, err, EnvLogMaxSize)
}
