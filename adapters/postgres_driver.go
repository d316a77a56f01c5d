package adapters

import (
	"context"
	"fmt"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/core/builders"
)

var (
	_ core.Driver       = (*postgresDriver)(nil)
	_ core.ColumnLister = (*postgresDriver)(nil)
)

// postgresDriver runs every statement in a read only transaction.
type postgresDriver struct {
	c *builders.Client
}

func (c *postgresDriver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	return c.c.Query(ctx, query)
}

func (c *postgresDriver) Columns(opts *core.TableOptions) ([]*core.Column, error) {
	schema := opts.Schema
	if schema == "" {
		schema = "public"
	}

	return c.c.ColumnsFromQuery(`
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE
			table_schema='%s' AND
			table_name='%s'
		ORDER BY ordinal_position
		`, schema, opts.Table)
}

func (c *postgresDriver) Structure() ([]*core.Structure, error) {
	query := `
		SELECT table_schema, table_name, table_type FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name
	`

	rows, err := c.Query(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var structure []*core.Structure
	schemas := make(map[string]*core.Structure)
	for rows.HasNext() {
		row, err := rows.Next()
		if err != nil {
			return nil, err
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("unexpected structure row: %v", row)
		}

		schema, name, typ := fmt.Sprint(row[0]), fmt.Sprint(row[1]), fmt.Sprint(row[2])

		parent, ok := schemas[schema]
		if !ok {
			parent = &core.Structure{
				Name:   schema,
				Schema: schema,
				Type:   core.StructureTypeNone,
			}
			schemas[schema] = parent
			structure = append(structure, parent)
		}

		parent.Children = append(parent.Children, &core.Structure{
			Name:   name,
			Schema: schema,
			Type:   getPGStructureType(typ),
		})
	}

	return structure, nil
}

func (c *postgresDriver) Close() {
	c.c.Close()
}

// getPGStructureType returns the structure type based on the provided string.
func getPGStructureType(typ string) core.StructureType {
	switch typ {
	case "TABLE", "BASE TABLE", "FOREIGN", "FOREIGN TABLE", "SYSTEM TABLE":
		return core.StructureTypeTable
	case "VIEW", "SYSTEM VIEW":
		return core.StructureTypeView
	default:
		return core.StructureTypeNone
	}
}
