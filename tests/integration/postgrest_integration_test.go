package integration

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tsuite "github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/internal/testutil"
	"github.com/nexus-automation/nexusprobe/postgrest"
	"github.com/nexus-automation/nexusprobe/probe"
	th "github.com/nexus-automation/nexusprobe/tests/testhelpers"
)

// PostgRESTTestSuite runs the probe against a real PostgREST server backed
// by the seeded postgres database.
type PostgRESTTestSuite struct {
	tsuite.Suite
	pg   *th.PostgresContainer
	rest *th.PostgRESTContainer
	ctx  context.Context
	d    *core.Connection
}

func TestPostgRESTTestSuite(t *testing.T) {
	tsuite.Run(t, new(PostgRESTTestSuite))
}

func (suite *PostgRESTTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	pg, err := th.NewPostgresContainer(suite.ctx)
	if err != nil {
		log.Fatal(err)
	}
	suite.pg = pg

	rest, err := th.NewPostgRESTContainer(suite.ctx, pg)
	if err != nil {
		log.Fatal(err)
	}
	suite.rest = rest
	suite.d = rest.Driver
}

func (suite *PostgRESTTestSuite) TearDownSuite() {
	suite.d.Close()
	suite.pg.Driver.Close()
	tc.CleanupContainer(suite.T(), suite.rest)
	tc.CleanupContainer(suite.T(), suite.pg)
	_ = suite.pg.Network.Remove(suite.ctx)
}

func (suite *PostgRESTTestSuite) runProbe(cfg probe.Config) (*probe.Report, string) {
	t := suite.T()

	logger, _ := testutil.SetupTestLogger(t)
	out := new(bytes.Buffer)

	report, err := probe.NewRunner(suite.d, cfg, logger, out).Run(suite.ctx)
	require.NoError(t, err)
	return report, out.String()
}

func (suite *PostgRESTTestSuite) TestProbeActiveModels() {
	t := suite.T()

	report, out := suite.runProbe(probe.DefaultConfig())

	assert.NoError(t, report.Count.Err)
	assert.True(t, report.Count.Known)
	assert.Equal(t, 3, report.Count.Total)

	assert.NoError(t, report.Data.Err)
	require.Len(t, report.Data.Records, 3)
	// newest first
	assert.Equal(t, "2024-03-03", report.Data.Records[0]["data"])
	assert.Equal(t, map[string]any{"id": int64(8), "nome": "Bruno"}, report.Data.Records[0]["consultor"])

	assert.Nil(t, report.Fallback)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, []probe.Step{probe.StepCount, probe.StepData}, report.Steps())
	assert.Contains(t, out, "Count Result: 3")
	assert.Contains(t, out, "Data Query Success. Returned 3 rows.")
}

func (suite *PostgRESTTestSuite) TestProbeModelsWithoutUnit() {
	t := suite.T()

	cfg := probe.DefaultConfig()
	cfg.Status = "Pendente"
	cfg.CheckRefs = true

	report, out := suite.runProbe(cfg)

	// the inner join hides models whose unit is null
	assert.Equal(t, 0, report.Count.Total)
	assert.True(t, report.Count.Known)
	assert.True(t, report.Data.Empty())
	assert.Empty(t, report.Warnings)

	require.NotNil(t, report.Fallback)
	require.Len(t, report.Fallback.Records, 2)
	assert.Nil(t, report.Fallback.Records[0]["unidade"])
	assert.Contains(t, out, "Simple Check: 2 rows found without joins.")
	assert.Contains(t, out, "Check FKs -> Unidade: null")

	require.NotNil(t, report.References)
	assert.Empty(t, report.References.Checked)
	assert.Contains(t, out, "No unit IDs to check.")
}

func (suite *PostgRESTTestSuite) TestProbeUnknownTable() {
	t := suite.T()

	cfg := probe.DefaultConfig()
	cfg.Table = "nexus_missing"

	report, _ := suite.runProbe(cfg)

	var pgErr *postgrest.Error
	require.ErrorAs(t, report.Count.Err, &pgErr)
	assert.Equal(t, 404, pgErr.Status)
	assert.ErrorAs(t, report.Data.Err, &pgErr)
	require.NotNil(t, report.Fallback)
	assert.Error(t, report.Fallback.Err)
}

func (suite *PostgRESTTestSuite) TestShouldReturnRows() {
	t := suite.T()

	wantStates := []core.CallState{
		core.CallStateExecuting, core.CallStateRetrieving, core.CallStateSucceeded,
	}
	wantRows := []core.Row{
		{map[string]any{"id": int64(10), "nome": "Centro"}},
		{map[string]any{"id": int64(11), "nome": "Norte"}},
	}

	rows, header, states, err := th.GetResult(t, suite.d, "nexus_unidades?select=id,nome&order=id.asc")
	assert.NoError(t, err)
	assert.Equal(t, core.Header{"Results"}, header)
	assert.Equal(t, wantStates, states)
	assert.Equal(t, wantRows, rows)
}

func (suite *PostgRESTTestSuite) TestShouldRejectWrites() {
	t := suite.T()

	_, _, states, err := th.GetResult(t, suite.d, "DELETE nexus_modelos")
	assert.ErrorIs(t, err, postgrest.ErrMethodNotAllowed)
	assert.Equal(t, []core.CallState{core.CallStateExecuting, core.CallStateExecutingFailed}, states)
}

func (suite *PostgRESTTestSuite) TestShouldReturnStructure() {
	t := suite.T()

	structure, err := suite.d.GetStructure()
	assert.NoError(t, err)

	gotTables := th.GetModels(t, structure, core.StructureTypeTable)
	assert.Subset(t, gotTables, []string{"nexus_modelos", "nexus_participantes", "nexus_unidades"})
}

func (suite *PostgRESTTestSuite) TestShouldReturnColumns() {
	t := suite.T()

	got, err := suite.d.GetColumns(&core.TableOptions{
		Table:           "nexus_unidades",
		Materialization: core.StructureTypeTable,
	})
	assert.NoError(t, err)

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "nome"}, names)
}
