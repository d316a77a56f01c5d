package mock

import (
	"time"

	"github.com/nexus-automation/nexusprobe/core"
)

type resultStreamConfig struct {
	nextSleep time.Duration
	meta      *core.Meta
	header    core.Header

	// failErr is returned by Next on the row at failAt
	failAt  int
	failErr error
}

type ResultStreamOption func(*resultStreamConfig)

// ResultStreamWithNextSleep delays every Next call.
func ResultStreamWithNextSleep(s time.Duration) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.nextSleep = s
	}
}

func ResultStreamWithMeta(meta *core.Meta) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.meta = meta
	}
}

// ResultStreamWithTotal reports a known total, as a counted query does.
// It keeps the schema type set by earlier options.
func ResultStreamWithTotal(total int) ResultStreamOption {
	return func(c *resultStreamConfig) {
		var meta core.Meta
		if c.meta != nil {
			meta = *c.meta
		}
		meta.Total = total
		meta.TotalKnown = true
		c.meta = &meta
	}
}

func ResultStreamWithHeader(header core.Header) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.header = header
	}
}

// ResultStreamWithFailure makes Next return err when it reaches the row at index.
func ResultStreamWithFailure(index int, err error) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.failAt = index
		c.failErr = err
	}
}
