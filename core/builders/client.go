package builders

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nexus-automation/nexusprobe/core"
)

// default sql client used by other specific implementations
type Client struct {
	db             *sql.DB
	typeProcessors map[string]func(any) any
}

func NewClient(db *sql.DB, opts ...ClientOption) *Client {
	config := clientConfig{
		typeProcessors: make(map[string]func(any) any),
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{
		db:             db,
		typeProcessors: config.typeProcessors,
	}
}

// ColumnsFromQuery executes a given query and converts the results to columns.
// A query should return a result that is at least 2 columns wide and have
// the following structure:
//
//	1st elem: name - string
//	2nd elem: type - string
//
// Query is sprintf-ed with args, so ColumnsFromQuery("select a from %s", "table_name") works.
func (c *Client) ColumnsFromQuery(query string, args ...any) ([]*core.Column, error) {
	result, err := c.Query(context.Background(), fmt.Sprintf(query, args...))
	if err != nil {
		return nil, err
	}
	defer result.Close()

	return ColumnsFromResultStream(result)
}

func (c *Client) Close() {
	c.db.Close()
}

func (c *Client) getTypeProcessor(typ string) func(any) any {
	proc, ok := c.typeProcessors[strings.ToLower(typ)]
	if ok {
		return proc
	}

	return func(val any) any {
		valb, ok := val.([]byte)
		if ok {
			return string(valb)
		}
		return val
	}
}

// Query executes a query inside a read only transaction and returns a result stream.
// The transaction is rolled back when the stream is closed.
func (c *Client) Query(ctx context.Context, query string) (*ResultStream, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("db.BeginTx: %w", err)
	}

	dbRows, err := tx.QueryContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	header, err := dbRows.Columns()
	if err != nil {
		_ = dbRows.Close()
		_ = tx.Rollback()
		return nil, err
	}

	dbCols, err := dbRows.ColumnTypes()
	if err != nil {
		_ = dbRows.Close()
		_ = tx.Rollback()
		return nil, err
	}

	// rowsErr holds an error that ended iteration early. It is reported
	// once by nextFunc.
	var (
		rowsErr     error
		errReturned bool
	)

	hasNextFunc := func() bool {
		if rowsErr != nil {
			return !errReturned
		}
		// if not next result, check for any new sets
		if dbRows.Next() || (dbRows.NextResultSet() && dbRows.Next()) {
			return true
		}
		if err := dbRows.Err(); err != nil {
			rowsErr = err
			return true
		}
		return false
	}

	nextFunc := func() (core.Row, error) {
		if rowsErr != nil {
			errReturned = true
			return nil, rowsErr
		}

		columns := make([]any, len(dbCols))
		columnPointers := make([]any, len(dbCols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := dbRows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		row := make(core.Row, len(dbCols))
		for i := range dbCols {
			proc := c.getTypeProcessor(dbCols[i].DatabaseTypeName())
			row[i] = proc(columns[i])
		}

		return row, nil
	}

	rows := NewResultStreamBuilder().
		WithNextFunc(nextFunc, hasNextFunc).
		WithHeader(header).
		WithCloseFunc(func() {
			_ = dbRows.Close()
			_ = tx.Rollback()
		}).
		WithMeta(&core.Meta{SchemaType: core.SchemaFul}).
		Build()

	return rows, nil
}
