package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrColumnsNotSupported = errors.New("listing columns not supported")

type (
	// Adapter is an object which allows to connect to database via url
	Adapter interface {
		Connect(url string) (Driver, error)
	}

	// Driver is an interface for a specific database driver
	Driver interface {
		Query(context.Context, string) (ResultStream, error)
		Structure() ([]*Structure, error)
		Close()
	}

	// ColumnLister is an optional interface for drivers that can describe table columns
	ColumnLister interface {
		Columns(opts *TableOptions) ([]*Column, error)
	}
)

type ConnectionID string

type Connection struct {
	params           *ConnectionParams
	unexpandedParams *ConnectionParams

	driver Driver
}

func (c *Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.params)
}

func NewConnection(params *ConnectionParams, adapter Adapter) (*Connection, error) {
	expanded := params.Expand()

	if expanded.ID == "" {
		expanded.ID = ConnectionID(uuid.New().String())
	}

	driver, err := adapter.Connect(expanded.URL)
	if err != nil {
		return nil, fmt.Errorf("adapter.Connect: %w", err)
	}

	c := &Connection{
		params:           expanded,
		unexpandedParams: params,

		driver: driver,
	}

	return c, nil
}

func (c *Connection) GetID() ConnectionID {
	return c.params.ID
}

func (c *Connection) GetName() string {
	return c.params.Name
}

func (c *Connection) GetType() string {
	return c.params.Type
}

// GetParams returns the original source for this connection
func (c *Connection) GetParams() *ConnectionParams {
	return c.unexpandedParams
}

// Execute starts the query in the background and returns the call handle.
// onEvent is triggered on every state change of the call.
func (c *Connection) Execute(query string, onEvent func(CallState, *Call)) *Call {
	exec := func(ctx context.Context) (ResultStream, error) {
		return c.driver.Query(ctx, query)
	}

	return newCallFromExecutor(exec, query, onEvent)
}

func (c *Connection) GetStructure() ([]*Structure, error) {
	structure, err := c.driver.Structure()
	if err != nil {
		return nil, err
	}

	// fallback to not confuse users
	if len(structure) < 1 {
		structure = []*Structure{
			{
				Name: "no schema to show",
				Type: StructureTypeNone,
			},
		}
	}
	return structure, nil
}

func (c *Connection) GetColumns(opts *TableOptions) ([]*Column, error) {
	if opts == nil {
		return nil, errors.New("no table options provided")
	}

	lister, ok := c.driver.(ColumnLister)
	if !ok {
		return nil, ErrColumnsNotSupported
	}

	cols, err := lister.Columns(opts)
	if err != nil {
		return nil, fmt.Errorf("lister.Columns: %w", err)
	}

	return cols, nil
}

func (c *Connection) Close() {
	c.driver.Close()
}
