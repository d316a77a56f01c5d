package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nexus-automation/nexusprobe/core"
)

var _ core.Driver = (*driver)(nil)

type driver struct {
	adapter *Adapter
}

func (d *driver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	d.adapter.record(query)
	config := d.adapter.config

	eff, ok := config.querySideEffects[query]
	if ok {
		err := eff(ctx)
		if err != nil {
			return nil, fmt.Errorf("side effect error: %w", err)
		}
	}

	res, ok := config.queryResults[query]
	if !ok {
		return NewResultStream(d.adapter.data, config.resultStreamOptions...), nil
	}
	if res.err != nil {
		return nil, res.err
	}

	opts := append([]ResultStreamOption{}, config.resultStreamOptions...)
	opts = append(opts, res.opts...)
	return NewResultStream(res.rows, opts...), nil
}

func (d *driver) Structure() ([]*core.Structure, error) {
	var structure []*core.Structure

	for table := range d.adapter.config.tableColumns {
		structure = append(structure, &core.Structure{
			Name:   table,
			Schema: "public",
			Type:   core.StructureTypeTable,
		})
	}
	sort.Slice(structure, func(i, j int) bool { return structure[i].Name < structure[j].Name })

	return structure, nil
}

func (d *driver) Columns(opts *core.TableOptions) ([]*core.Column, error) {
	columns, ok := d.adapter.config.tableColumns[opts.Table]
	if !ok {
		return nil, fmt.Errorf("unknown table: %s", opts.Table)
	}

	return columns, nil
}

func (d *driver) Close() {}

var _ core.Adapter = (*Adapter)(nil)

// Adapter serves canned results. Queries without a registered result
// return the default data.
type Adapter struct {
	data   []core.Row
	config *adapterConfig

	mu      sync.Mutex
	queries []string
}

func NewAdapter(data []core.Row, opts ...AdapterOption) *Adapter {
	config := &adapterConfig{
		querySideEffects: make(map[string]func(context.Context) error),
		queryResults:     make(map[string]*queryResult),
		tableColumns:     make(map[string][]*core.Column),

		resultStreamOptions: []ResultStreamOption{},
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Adapter{
		data:   data,
		config: config,
	}
}

func (a *Adapter) Connect(_ string) (core.Driver, error) {
	if a.config.connectErr != nil {
		return nil, a.config.connectErr
	}
	return &driver{adapter: a}, nil
}

func (a *Adapter) record(query string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queries = append(a.queries, query)
}

// Queries returns all queries received by drivers of this adapter, in order.
func (a *Adapter) Queries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.queries...)
}
