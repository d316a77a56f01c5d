package builders

import (
	"errors"

	"github.com/nexus-automation/nexusprobe/core"
)

var errNoNextRow = errors.New("no next row")

// NextSingle creates next and hasNext functions from a provided single value
func NextSingle(value any) (func() (core.Row, error), func() bool) {
	has := true

	// iterator functions
	next := func() (core.Row, error) {
		if !has {
			return nil, errNoNextRow
		}
		has = false
		return core.Row{value}, nil
	}

	hasNext := func() bool {
		return has
	}

	return next, hasNext
}

// NextSlice creates next and hasNext functions from provided values
// preprocessor is an optional function which parses a single value from slice before adding it to a row
func NextSlice[T any](values []T, preprocess func(T) any) (func() (core.Row, error), func() bool) {
	index := 0

	if preprocess == nil {
		preprocess = func(v T) any { return v }
	}

	hasNext := func() bool {
		return index < len(values)
	}

	// iterator functions
	next := func() (core.Row, error) {
		if !hasNext() {
			return nil, errNoNextRow
		}

		row := core.Row{preprocess(values[index])}
		index++
		return row, nil
	}

	return next, hasNext
}

// NextNil creates next and hasNext functions that don't return anything (no rows)
func NextNil() (func() (core.Row, error), func() bool) {
	hasNext := func() bool {
		return false
	}

	// iterator functions
	next := func() (core.Row, error) {
		return nil, errNoNextRow
	}

	return next, hasNext
}

// NextYield creates next and hasNext functions from a producer function.
// Every call to yield produces one row. An error returned by the producer
// is returned by the last call to next.
func NextYield(fn func(yield func(...any)) error) (func() (core.Row, error), func() bool) {
	ch := make(chan core.Row, 10)

	// fnErr is written before ch is closed and only read after
	var fnErr error
	go func() {
		defer close(ch)
		fnErr = fn(func(v ...any) {
			ch <- core.Row(v)
		})
	}()

	var (
		buffered    core.Row
		hasBuffered bool
		errReturned bool
	)

	hasNext := func() bool {
		if hasBuffered {
			return true
		}

		row, ok := <-ch
		if !ok {
			return fnErr != nil && !errReturned
		}

		buffered, hasBuffered = row, true
		return true
	}

	next := func() (core.Row, error) {
		if !hasNext() {
			return nil, errNoNextRow
		}

		if hasBuffered {
			hasBuffered = false
			return buffered, nil
		}

		errReturned = true
		return nil, fnErr
	}

	return next, hasNext
}
