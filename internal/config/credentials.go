package config

import (
	"errors"
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Variables holding the endpoint and key, in order of preference.
var (
	URLVariables = []string{"NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_URL"}
	KeyVariables = []string{"SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_KEY"}
)

var ErrMissingCredentials = errors.New("missing Supabase credentials")

// Credentials of the hosted project.
type Credentials struct {
	URL string `validate:"required,url"`
	Key string `validate:"required"`
}

// LoadCredentials reads the credentials. Missing variables are reported
// with ErrMissingCredentials.
func LoadCredentials(getenv Getenv) (*Credentials, error) {
	c := &Credentials{
		URL: firstOf(getenv, URLVariables...),
		Key: firstOf(getenv, KeyVariables...),
	}

	var missing []string
	if c.URL == "" {
		missing = append(missing, strings.Join(URLVariables, " or "))
	}
	if c.Key == "" {
		missing = append(missing, strings.Join(KeyVariables, " or "))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, " and "))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that all fields in Credentials are valid
func (c *Credentials) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed for credentials: %w", err)
	}

	return nil
}

// ConnectionURL returns the project url with the key embedded as password,
// the form accepted by the postgrest adapter.
func (c *Credentials) ConnectionURL() (string, error) {
	u, err := nurl.Parse(strings.TrimSpace(c.URL))
	if err != nil {
		return "", fmt.Errorf("url.Parse: %w", err)
	}
	u.User = nurl.UserPassword("service", c.Key)
	return u.String(), nil
}
