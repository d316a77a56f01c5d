package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var ErrInvalidRange = func(from, to int) error { return fmt.Errorf("invalid selection range: %d ... %d", from, to) }

// drainTimeout is the maximum time a reader waits for rows to arrive
const drainTimeout = 5 * time.Minute

// Result is the cached form of the ResultStream iterator
type Result struct {
	header Header
	meta   *Meta
	rows   []Row

	isDrained bool
	isFilled  bool

	writeMutex sync.Mutex
	mu         sync.RWMutex
}

// SetIter sets the ResultStream iterator to result and drains it.
// Draining stops with ctx's error once ctx is done.
// This can be done only once!
func (cr *Result) SetIter(ctx context.Context, iter ResultStream, onFillStart func()) error {
	// lock write mutex
	cr.writeMutex.Lock()
	defer cr.writeMutex.Unlock()

	// close iterator on return
	defer iter.Close()

	cr.mu.Lock()
	cr.header = iter.Header()
	cr.meta = iter.Meta()
	if cr.meta == nil {
		cr.meta = &Meta{}
	}
	cr.rows = make([]Row, 0)
	cr.isDrained = false
	cr.isFilled = true
	cr.mu.Unlock()

	defer func() {
		cr.mu.Lock()
		cr.isDrained = true
		cr.mu.Unlock()
	}()

	// trigger callback
	if onFillStart != nil {
		onFillStart()
	}

	// drain the iterator
	for iter.HasNext() {
		if err := ctx.Err(); err != nil {
			cr.mu.Lock()
			cr.isFilled = false
			cr.mu.Unlock()
			return err
		}

		row, err := iter.Next()
		if err != nil {
			cr.mu.Lock()
			cr.isFilled = false
			cr.mu.Unlock()
			return err
		}

		cr.mu.Lock()
		cr.rows = append(cr.rows, row)
		cr.mu.Unlock()
	}

	return nil
}

func (cr *Result) Wipe() {
	// lock write and read mutexes
	cr.writeMutex.Lock()
	defer cr.writeMutex.Unlock()
	cr.mu.Lock()
	defer cr.mu.Unlock()

	// clear everything
	cr.header = Header{}
	cr.meta = &Meta{}
	cr.rows = []Row{}
	cr.isDrained = false
	cr.isFilled = false
}

func (cr *Result) Format(formatter Formatter, from, to int) ([]byte, error) {
	rows, fromAdjusted, _, err := cr.getRows(from, to)
	if err != nil {
		return nil, fmt.Errorf("cr.getRows: %w", err)
	}

	opts := &FormatterOptions{
		SchemaType: cr.Meta().SchemaType,
		ChunkStart: fromAdjusted,
	}

	f, err := formatter.Format(cr.Header(), rows, opts)
	if err != nil {
		return nil, fmt.Errorf("formatter.Format: %w", err)
	}

	return f, nil
}

// Len returns the number of rows currently available.
func (cr *Result) Len() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.rows)
}

func (cr *Result) IsEmpty() bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return !cr.isFilled
}

func (cr *Result) Header() Header {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.header
}

func (cr *Result) Meta() *Meta {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if cr.meta == nil {
		return &Meta{}
	}
	return cr.meta
}

// Rows returns rows in range [from, to). Negative values count from the end,
// -1 being the position after the last row.
func (cr *Result) Rows(from, to int) ([]Row, error) {
	rows, _, _, err := cr.getRows(from, to)
	return rows, err
}

// drained reports whether the iterator was exhausted and how many rows are cached.
func (cr *Result) drained() (bool, int) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.isDrained, len(cr.rows)
}

// getRows returns the row range and adjusted from-to values
func (cr *Result) getRows(from, to int) (rows []Row, rangeFrom, rangeTo int, err error) {
	// validation
	if (from < 0 && to < 0) || (from >= 0 && to >= 0) {
		if from > to {
			return nil, 0, 0, ErrInvalidRange(from, to)
		}
	}
	// undefined -> error
	if from < 0 && to >= 0 {
		return nil, 0, 0, ErrInvalidRange(from, to)
	}

	// timeout context
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	// Wait for drain, available index or timeout
	for {
		isDrained, length := cr.drained()
		if isDrained || (to >= 0 && to <= length) {
			break
		}

		if err := ctx.Err(); err != nil {
			return nil, 0, 0, fmt.Errorf("cache flushing timeout exceeded: %s", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cr.mu.RLock()
	defer cr.mu.RUnlock()

	// calculate range
	length := len(cr.rows)
	if from < 0 {
		from += length + 1
		if from < 0 {
			from = 0
		}
	}
	if to < 0 {
		to += length + 1
		if to < 0 {
			to = 0
		}
	}

	if from > length {
		from = length
	}
	if to > length {
		to = length
	}
	if from > to {
		return nil, 0, 0, ErrInvalidRange(from, to)
	}

	out := make([]Row, to-from)
	copy(out, cr.rows[from:to])

	return out, from, to, nil
}
