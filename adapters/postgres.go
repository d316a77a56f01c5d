package adapters

import (
	"database/sql"
	"encoding/json"
	"fmt"
	nurl "net/url"

	_ "github.com/lib/pq"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/core/builders"
)

// Register client
func init() {
	_ = register(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ core.Adapter = (*Postgres)(nil)

// Postgres connects directly to the database behind the REST endpoint.
type Postgres struct{}

func (p *Postgres) Connect(url string) (core.Driver, error) {
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w: ", err)
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}

	return newPostgresDriver(db), nil
}

func newPostgresDriver(db *sql.DB) *postgresDriver {
	return &postgresDriver{
		c: builders.NewClient(db,
			builders.WithTypeProcessor(decodeJSONColumn, "json", "jsonb"),
		),
	}
}

// decodeJSONColumn decodes json columns so they render like embedded
// records of the REST endpoint.
func decodeJSONColumn(a any) any {
	b, ok := a.([]byte)
	if !ok {
		return a
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	return v
}
