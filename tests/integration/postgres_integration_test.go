package integration

import (
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	tsuite "github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"

	"github.com/nexus-automation/nexusprobe/core"
	th "github.com/nexus-automation/nexusprobe/tests/testhelpers"
)

// PostgresTestSuite is the test suite for the postgres adapter.
type PostgresTestSuite struct {
	tsuite.Suite
	// ctr is the postgres testcontainer
	ctr *th.PostgresContainer
	ctx context.Context
	// d is the postgres connection
	d *core.Connection
}

// TestPostgresTestSuite is the entrypoint for go test.
//
// testify/suite can't handle parallel tests, see
// https://github.com/stretchr/testify/issues/934
func TestPostgresTestSuite(t *testing.T) {
	tsuite.Run(t, new(PostgresTestSuite))
}

func (suite *PostgresTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	ctr, err := th.NewPostgresContainer(suite.ctx)
	if err != nil {
		log.Fatal(err)
	}

	suite.ctr = ctr
	suite.d = ctr.Driver
}

func (suite *PostgresTestSuite) TearDownSuite() {
	suite.d.Close()
	tc.CleanupContainer(suite.T(), suite.ctr)
	_ = suite.ctr.Network.Remove(suite.ctx)
}

func (suite *PostgresTestSuite) TestShouldErrorInvalidQuery() {
	t := suite.T()

	_, _, states, err := th.GetResult(t, suite.d, "invalid sql")
	assert.ErrorContains(t, err, "syntax error")
	assert.Equal(t, []core.CallState{core.CallStateExecuting, core.CallStateExecutingFailed}, states)
}

func (suite *PostgresTestSuite) TestShouldRejectWrites() {
	t := suite.T()

	_, _, _, err := th.GetResult(t, suite.d, "DELETE FROM nexus_modelos")
	assert.ErrorContains(t, err, "read-only transaction")

	rows, _, _, err := th.GetResult(t, suite.d, "SELECT count(*) FROM nexus_modelos")
	assert.NoError(t, err)
	assert.Equal(t, []core.Row{{int64(6)}}, rows)
}

func (suite *PostgresTestSuite) TestShouldReturnRows() {
	t := suite.T()

	wantStates := []core.CallState{
		core.CallStateExecuting, core.CallStateRetrieving, core.CallStateSucceeded,
	}
	wantCols := core.Header{"status", "unidade", "consultor_venda", "payload"}
	wantRows := []core.Row{
		{"Ativo", int64(10), int64(7), map[string]any{"origem": "loja"}},
		{"Ativo", int64(11), nil, nil},
	}

	query := `
	SELECT status, unidade, consultor_venda, payload
	FROM nexus_modelos
	WHERE status = 'Ativo'
	ORDER BY data
	LIMIT 2`

	gotRows, gotCols, gotStates, err := th.GetResult(t, suite.d, query)
	assert.NoError(t, err)

	assert.Equal(t, wantCols, gotCols)
	assert.Equal(t, wantStates, gotStates)
	assert.Equal(t, wantRows, gotRows)
}

func (suite *PostgresTestSuite) TestShouldReturnStructure() {
	t := suite.T()

	structure, err := suite.d.GetStructure()
	assert.NoError(t, err)

	assert.Equal(t, []string{"public"}, th.GetSchemas(t, structure))

	gotTables := th.GetModels(t, structure, core.StructureTypeTable)
	assert.ElementsMatch(t, []string{"nexus_modelos", "nexus_participantes", "nexus_unidades"}, gotTables)
}

func (suite *PostgresTestSuite) TestShouldReturnColumns() {
	t := suite.T()

	want := []*core.Column{
		{Name: "id", Type: "bigint"},
		{Name: "nome", Type: "text"},
	}

	got, err := suite.d.GetColumns(&core.TableOptions{
		Table:           "nexus_unidades",
		Schema:          "public",
		Materialization: core.StructureTypeTable,
	})

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
