package output

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/core/format"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Writer writes a range of result rows somewhere.
type Writer interface {
	Write(result *core.Result, from, to int) error
}

var formatters = map[string]func() core.Formatter{
	"json":  func() core.Formatter { return format.NewJSON() },
	"csv":   func() core.Formatter { return format.NewCSV() },
	"table": func() core.Formatter { return format.NewTable() },
}

// Formatter returns the formatter registered under name.
func Formatter(name string) (core.Formatter, error) {
	fn, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownFormat, name, FormatNames())
	}
	return fn(), nil
}

func FormatNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
