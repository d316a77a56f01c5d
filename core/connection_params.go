package core

import (
	"encoding/json"
	nurl "net/url"
)

type ConnectionParams struct {
	ID   ConnectionID
	Name string
	Type string
	URL  string
}

// Expand returns a copy of the original parameters with expanded fields
func (p *ConnectionParams) Expand() *ConnectionParams {
	return &ConnectionParams{
		ID:   ConnectionID(expandOrDefault(string(p.ID))),
		Name: expandOrDefault(p.Name),
		Type: expandOrDefault(p.Type),
		URL:  expandOrDefault(p.URL),
	}
}

// RedactedURL returns the url with any password replaced by "xxxxx".
// Connection urls carry api keys in the userinfo part.
func (p *ConnectionParams) RedactedURL() string {
	u, err := nurl.Parse(p.URL)
	if err != nil {
		return ""
	}
	return u.Redacted()
}

func (p *ConnectionParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
		URL  string `json:"url"`
	}{
		ID:   string(p.ID),
		Name: p.Name,
		Type: p.Type,
		URL:  p.RedactedURL(),
	})
}
