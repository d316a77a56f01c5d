package builders

import (
	"fmt"

	"github.com/nexus-automation/nexusprobe/core"
)

// ColumnsFromResultStream converts the result stream to columns.
// Every row must be at least 2 columns wide:
//
//	1st elem: name - string or []byte
//	2nd elem: type - string or []byte
func ColumnsFromResultStream(rows core.ResultStream) ([]*core.Column, error) {
	var out []*core.Column

	for i := 0; rows.HasNext(); i++ {
		row, err := rows.Next()
		if err != nil {
			return nil, fmt.Errorf("result.Next: %w", err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("column row %d: want name and type, got %d values", i, len(row))
		}

		name, err := columnText(row[0])
		if err != nil {
			return nil, fmt.Errorf("column row %d name: %w", i, err)
		}
		typ, err := columnText(row[1])
		if err != nil {
			return nil, fmt.Errorf("column row %d type: %w", i, err)
		}

		out = append(out, &core.Column{
			Name: name,
			Type: typ,
		})
	}

	return out, nil
}

func columnText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("not a string: %T", v)
	}
}
