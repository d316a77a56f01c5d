package adapters

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nexus-automation/nexusprobe/core"
)

var (
	errNoValidTypeAliases   = errors.New("no valid type aliases provided")
	ErrUnsupportedTypeAlias = errors.New("no driver registered for provided type alias")
)

// registeredAdapters holds implemented adapters - specific adapters register themselves in their init functions.
var registeredAdapters = make(map[string]core.Adapter)

// register registers a new adapter for specific database
func register(adapter core.Adapter, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredAdapters[alias] = adapter
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}

	return nil
}

// Mux is an interface to all internal adapters.
type Mux struct{}

func (*Mux) GetAdapter(typ string) (core.Adapter, error) {
	value, ok := registeredAdapters[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTypeAlias, typ)
	}

	return value, nil
}

func (*Mux) AddAdapter(typ string, adapter core.Adapter) error {
	return register(adapter, typ)
}

// Aliases returns all registered type aliases, sorted.
func (*Mux) Aliases() []string {
	aliases := make([]string, 0, len(registeredAdapters))
	for alias := range registeredAdapters {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// NewConnection is a wrapper around core.NewConnection that uses the internal mux for
// adapter registration.
func NewConnection(params *core.ConnectionParams) (*core.Connection, error) {
	adapter, err := new(Mux).GetAdapter(params.Expand().Type)
	if err != nil {
		return nil, fmt.Errorf("Mux.GetAdapter: %w", err)
	}

	c, err := core.NewConnection(params, adapter)
	if err != nil {
		return nil, fmt.Errorf("core.NewConnection: %w", err)
	}

	return c, nil
}
