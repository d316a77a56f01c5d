package output

import (
	"fmt"
	"io"

	"github.com/nexus-automation/nexusprobe/core"
)

var _ Writer = (*Stream)(nil)

// Stream writes formatted rows to an io.Writer, usually stdout.
type Stream struct {
	w         io.Writer
	formatter core.Formatter
}

func NewStream(w io.Writer, formatter core.Formatter) *Stream {
	return &Stream{
		w:         w,
		formatter: formatter,
	}
}

func (so *Stream) Write(result *core.Result, from, to int) error {
	out, err := result.Format(so.formatter, from, to)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if _, err := so.w.Write(out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(so.w)
	return err
}
