package format

import (
	"encoding/json"
	"fmt"

	"github.com/nexus-automation/nexusprobe/core"
)

var _ core.Formatter = (*JSON)(nil)

type JSON struct {
	indent string
}

func NewJSON() *JSON {
	return &JSON{indent: "  "}
}

// NewCompactJSON returns a formatter which writes everything on a single line.
func NewCompactJSON() *JSON {
	return &JSON{}
}

// records zips the header with each row. Rows longer than the header get
// placeholder keys.
func (jf *JSON) records(header core.Header, rows []core.Row) []map[string]any {
	data := make([]map[string]any, 0, len(rows))

	for _, row := range rows {
		record := make(map[string]any, len(row))
		for i, val := range row {
			key := fmt.Sprintf("<unknown-field-%d>", i)
			if i < len(header) {
				key = header[i]
			}
			record[key] = val
		}
		data = append(data, record)
	}

	return data
}

// documents returns the raw documents of a schemaless result.
func (jf *JSON) documents(rows []core.Row) []any {
	data := make([]any, 0, len(rows))

	for _, row := range rows {
		switch len(row) {
		case 0:
		case 1:
			data = append(data, row[0])
		default:
			data = append(data, row)
		}
	}
	return data
}

func (jf *JSON) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	var data any = jf.records(header, rows)
	if opts != nil && opts.SchemaType == core.SchemaLess {
		data = jf.documents(rows)
	}

	if jf.indent == "" {
		out, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}
		return out, nil
	}

	out, err := json.MarshalIndent(data, "", jf.indent)
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent: %w", err)
	}

	return out, nil
}
