package format

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nexus-automation/nexusprobe/core"
)

var _ core.Formatter = (*Table)(nil)

type Table struct {
	// maxCellWidth truncates long cells, 0 disables truncation
	maxCellWidth int
}

func NewTable() *Table {
	return &Table{maxCellWidth: 60}
}

// cell renders nested values (embedded records, arrays) as compact json
func (tf *Table) cell(val any) any {
	switch v := val.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case nil:
		return "NULL"
	default:
		return v
	}
}

func (tf *Table) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	tableHeaders := table.Row{""}
	for _, k := range header {
		tableHeaders = append(tableHeaders, k)
	}
	index := 0
	if opts != nil {
		index = opts.ChunkStart
	}

	var tableRows []table.Row
	for _, row := range rows {
		indexedRow := table.Row{index + 1}
		for _, val := range row {
			indexedRow = append(indexedRow, tf.cell(val))
		}
		tableRows = append(tableRows, indexedRow)
		index += 1
	}

	t := table.NewWriter()
	t.AppendHeader(tableHeaders)
	t.AppendRows(tableRows)
	t.AppendSeparator()
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false
	if tf.maxCellWidth > 0 {
		var configs []table.ColumnConfig
		for i := range header {
			configs = append(configs, table.ColumnConfig{Number: i + 2, WidthMax: tf.maxCellWidth})
		}
		t.SetColumnConfigs(configs)
	}
	t.SuppressTrailingSpaces()
	render := t.Render()

	return []byte(render), nil
}
