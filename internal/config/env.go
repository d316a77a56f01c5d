package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when no other file is given.
const DefaultEnvFile = ".env"

// LoadEnvFile loads variables from path into the process environment.
// Variables which are already set are kept. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("godotenv.Load: %w", err)
	}
	return nil
}

// Getenv looks up a variable, os.Getenv in production.
type Getenv func(key string) string

// firstOf returns the first non empty variable out of keys.
func firstOf(getenv Getenv, keys ...string) string {
	for _, key := range keys {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// OSGetenv reads the process environment.
func OSGetenv(key string) string {
	return os.Getenv(key)
}
