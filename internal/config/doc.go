// Package config loads credentials and runtime settings from the
// environment, optionally seeded from a .env file.
package config
