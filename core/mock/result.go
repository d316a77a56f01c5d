package mock

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nexus-automation/nexusprobe/core"
)

var errNoNextRow = errors.New("no next row")

// ResultStream is an in-memory core.ResultStream. It can be delayed, made to
// fail at a given row and tells whether it was closed.
type ResultStream struct {
	rows   []core.Row
	index  int
	config *resultStreamConfig

	closed atomic.Bool
}

// NewResultStream returns a mocked result stream with provided rows.
// Unless a header is given it is generated from the width of the first row:
// header_0, header_1, etc.
func NewResultStream(rows []core.Row, opts ...ResultStreamOption) *ResultStream {
	config := &resultStreamConfig{
		meta:   &core.Meta{},
		header: makeDefaultHeader(rows),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &ResultStream{
		rows:   rows,
		config: config,
	}
}

// NewRecordStream returns a schemaless stream holding one record per row,
// the shape documents come back in from rest adapters.
func NewRecordStream(records []map[string]any, opts ...ResultStreamOption) *ResultStream {
	opts = append([]ResultStreamOption{
		ResultStreamWithHeader(core.Header{"Results"}),
		ResultStreamWithMeta(&core.Meta{SchemaType: core.SchemaLess}),
	}, opts...)

	return NewResultStream(RecordRows(records...), opts...)
}

func makeDefaultHeader(rows []core.Row) core.Header {
	if len(rows) == 0 {
		return nil
	}
	header := make(core.Header, len(rows[0]))
	for i := range rows[0] {
		header[i] = fmt.Sprintf("header_%d", i)
	}
	return header
}

func (rs *ResultStream) Meta() *core.Meta {
	return rs.config.meta
}

func (rs *ResultStream) Header() core.Header {
	return rs.config.header
}

func (rs *ResultStream) Next() (core.Row, error) {
	time.Sleep(rs.config.nextSleep)

	if !rs.HasNext() {
		return nil, errNoNextRow
	}
	if rs.config.failErr != nil && rs.index == rs.config.failAt {
		return nil, rs.config.failErr
	}

	row := rs.rows[rs.index]
	rs.index++
	return row, nil
}

func (rs *ResultStream) HasNext() bool {
	return rs.index < len(rs.rows)
}

func (rs *ResultStream) Close() {
	rs.closed.Store(true)
}

// IsClosed reports whether Close was called.
func (rs *ResultStream) IsClosed() bool {
	return rs.closed.Load()
}

// NewRows returns a slice of rows in form of:
//
//	{ <index>(int), "row_<index>"(string) }
//
// where the first index is "from" and the last one is one less than "to".
func NewRows(from, to int) []core.Row {
	var rows []core.Row

	for i := from; i < to; i++ {
		rows = append(rows, core.Row{i, fmt.Sprintf("row_%d", i)})
	}
	return rows
}

// RecordRows wraps every record in a single column row.
func RecordRows(records ...map[string]any) []core.Row {
	rows := make([]core.Row, len(records))
	for i, rec := range records {
		rows[i] = core.Row{rec}
	}
	return rows
}
