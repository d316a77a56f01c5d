package testhelpers

import (
	"context"
	"fmt"

	tc "github.com/testcontainers/testcontainers-go"
	tcpsql "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/network"

	"github.com/nexus-automation/nexusprobe/adapters"
	"github.com/nexus-automation/nexusprobe/core"
)

// postgresAlias is the host name of the database inside the test network.
const postgresAlias = "db"

type PostgresContainer struct {
	*tcpsql.PostgresContainer
	ConnURL string
	Network *tc.DockerNetwork
	Driver  *core.Connection
}

// NewPostgresContainer starts a seeded postgres container attached to a new
// network and connects the postgres adapter to it.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	seedFile, err := GetTestDataFile("postgres_seed.sql")
	if err != nil {
		return nil, err
	}
	defer seedFile.Close()

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("network.New: %w", err)
	}

	ctr, err := tcpsql.Run(
		ctx,
		"postgres:16-alpine",
		tcpsql.BasicWaitStrategies(),
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
		network.WithNetwork([]string{postgresAlias}, nw),
		tcpsql.WithInitScripts(seedFile.Name()),
		tcpsql.WithDatabase("dev"),
		tcpsql.WithUsername("postgres"),
		tcpsql.WithPassword("postgres"),
	)
	if err != nil {
		return nil, err
	}

	connURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	driver, err := adapters.NewConnection(&core.ConnectionParams{
		ID:   "test-postgres",
		Name: "test-postgres",
		Type: "postgres",
		URL:  connURL,
	})
	if err != nil {
		return nil, err
	}

	return &PostgresContainer{
		PostgresContainer: ctr,
		ConnURL:           connURL,
		Network:           nw,
		Driver:            driver,
	}, nil
}

// InternalURL is the database url as seen from other containers of the network.
func (p *PostgresContainer) InternalURL() string {
	return fmt.Sprintf("postgres://postgres:postgres@%s:5432/dev?sslmode=disable", postgresAlias)
}
