package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nexus-automation/nexusprobe/core"
)

var _ core.Formatter = (*CSV)(nil)

type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

// field converts a single value to its csv representation.
// Embedded records and arrays are written as json.
func (cf *CSV) field(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

func (cf *CSV) parseSchemaFul(header core.Header, rows []core.Row) [][]string {
	data := [][]string{
		header,
	}
	for _, row := range rows {
		var csvRow []string
		for _, rec := range row {
			csvRow = append(csvRow, cf.field(rec))
		}
		data = append(data, csvRow)
	}

	return data
}

// parseSchemaLess spreads single record rows over the union of their keys.
// Rows that don't hold a record fall back to the schemaful layout.
func (cf *CSV) parseSchemaLess(header core.Header, rows []core.Row) [][]string {
	records := make([]map[string]any, 0, len(rows))
	keys := make(map[string]struct{})
	for _, row := range rows {
		if len(row) != 1 {
			return cf.parseSchemaFul(header, rows)
		}
		rec, ok := row[0].(map[string]any)
		if !ok {
			return cf.parseSchemaFul(header, rows)
		}
		for k := range rec {
			keys[k] = struct{}{}
		}
		records = append(records, rec)
	}

	columns := make([]string, 0, len(keys))
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	data := [][]string{columns}
	for _, rec := range records {
		csvRow := make([]string, len(columns))
		for i, col := range columns {
			csvRow[i] = cf.field(rec[col])
		}
		data = append(data, csvRow)
	}

	return data
}

func (cf *CSV) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	var data [][]string
	if opts != nil && opts.SchemaType == core.SchemaLess {
		data = cf.parseSchemaLess(header, rows)
	} else {
		data = cf.parseSchemaFul(header, rows)
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	err := w.WriteAll(data)
	if err != nil {
		return nil, fmt.Errorf("w.WriteAll: %w", err)
	}

	return b.Bytes(), nil
}
