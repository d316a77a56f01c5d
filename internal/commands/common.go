package commands

import (
	"errors"
	"fmt"

	"github.com/nexus-automation/nexusprobe/adapters"
	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/internal/config"
	"github.com/nexus-automation/nexusprobe/internal/logging"
)

const defaultType = "supabase"

type app struct {
	env *Environment

	envFile  string
	logLevel string
}

// setupLogger loads the env file and builds the logger.
func (a *app) setupLogger() (*logging.Logger, error) {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	settings, err := config.LoggerSettingsFromEnv(a.env.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to read logger settings: %w", err)
	}
	if a.logLevel != "" {
		settings.LogLevel = a.logLevel
	}

	logger, err := logging.New(settings, a.env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return logger, nil
}

// credentialsURL returns the connection url of the hosted project.
func (a *app) credentialsURL(logger core.Logger) (string, error) {
	creds, err := config.LoadCredentials(a.env.Getenv)
	if err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			logger.Error("Missing Supabase credentials in .env: " + err.Error())
		}
		return "", err
	}

	return creds.ConnectionURL()
}

// connect opens a connection. An empty url means the hosted project of the
// credentials, which only makes sense for the rest adapters.
func (a *app) connect(logger core.Logger, typ, url string) (*core.Connection, error) {
	if typ == "" {
		typ = defaultType
	}

	if url == "" {
		if typ != "supabase" && typ != "postgrest" {
			return nil, fmt.Errorf("--url is required for type %q", typ)
		}
		var err error
		url, err = a.credentialsURL(logger)
		if err != nil {
			return nil, err
		}
	}

	conn, err := adapters.NewConnection(&core.ConnectionParams{
		Name: typ,
		Type: typ,
		URL:  url,
	})
	if err != nil {
		return nil, err
	}

	logger.Debugf("connected %s to %s", conn.GetID(), conn.GetParams().RedactedURL())
	return conn, nil
}
