package mock

import (
	"context"

	"github.com/nexus-automation/nexusprobe/core"
)

type queryResult struct {
	rows []core.Row
	opts []ResultStreamOption
	err  error
}

type adapterConfig struct {
	querySideEffects map[string]func(context.Context) error
	queryResults     map[string]*queryResult
	tableColumns     map[string][]*core.Column
	connectErr       error

	resultStreamOptions []ResultStreamOption
}

type AdapterOption func(*adapterConfig)

func AdapterWithQuerySideEffect(query string, sideEffect func(context.Context) error) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.querySideEffects[query]
		if ok {
			panic("side effect already registered for query: " + query)
		}

		c.querySideEffects[query] = sideEffect
	}
}

// AdapterWithQueryResult registers rows returned for an exact query text.
func AdapterWithQueryResult(query string, rows []core.Row, opts ...ResultStreamOption) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.queryResults[query]
		if ok {
			panic("result already registered for query: " + query)
		}

		c.queryResults[query] = &queryResult{rows: rows, opts: opts}
	}
}

// AdapterWithQueryRecords registers schemaless records returned for an exact query text.
func AdapterWithQueryRecords(query string, records []map[string]any, opts ...ResultStreamOption) AdapterOption {
	opts = append([]ResultStreamOption{
		ResultStreamWithHeader(core.Header{"Results"}),
		ResultStreamWithMeta(&core.Meta{SchemaType: core.SchemaLess}),
	}, opts...)
	return AdapterWithQueryResult(query, RecordRows(records...), opts...)
}

// AdapterWithQueryError makes the query fail with err.
func AdapterWithQueryError(query string, err error) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.queryResults[query]
		if ok {
			panic("result already registered for query: " + query)
		}

		c.queryResults[query] = &queryResult{err: err}
	}
}

func AdapterWithConnectError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.connectErr = err
	}
}

func AdapterWithTableDefinition(table string, columns []*core.Column) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.tableColumns[table]
		if ok {
			panic("columns already registered for table: " + table)
		}

		c.tableColumns[table] = columns
	}
}

func AdapterWithResultStreamOpts(opts ...ResultStreamOption) AdapterOption {
	return func(c *adapterConfig) {
		c.resultStreamOptions = append(c.resultStreamOptions, opts...)
	}
}
