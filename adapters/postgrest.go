package adapters

import (
	"errors"
	"fmt"
	"net/http"
	nurl "net/url"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/postgrest"
)

// Register client
func init() {
	_ = register(&PostgREST{}, "postgrest", "supabase")
}

var _ core.Adapter = (*PostgREST)(nil)

var errMissingAPIKey = errors.New("no api key in connection url (expected https://service:<key>@host)")

// PostgREST connects to a REST endpoint of a hosted project.
// The api key is taken from the password part of the url. Optional query
// parameters: "schema" selects a non default schema, "api_path" overrides
// the mount point of a self hosted endpoint.
type PostgREST struct {
	// Client is used for all requests, http.DefaultClient if nil.
	Client *http.Client
}

func (p *PostgREST) Connect(url string) (core.Driver, error) {
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse connection url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("connection url has no host")
	}

	var key string
	if u.User != nil {
		key, _ = u.User.Password()
		if key == "" {
			key = u.User.Username()
		}
	}
	if key == "" {
		return nil, errMissingAPIKey
	}

	schema := u.Query().Get("schema")
	if schema == "" {
		schema = "public"
	}

	apiPath := postgrest.APIPath
	if u.Query().Has("api_path") {
		apiPath = u.Query().Get("api_path")
	}

	base := &nurl.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &postgrestDriver{
		client:  client,
		base:    base,
		key:     key,
		schema:  schema,
		apiPath: apiPath,
	}, nil
}
