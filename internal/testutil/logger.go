package testutil

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/nexus-automation/nexusprobe/internal/logging"
)

// Buffer is a bytes.Buffer safe for concurrent use.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// SetupTestLogger returns a debug logger and the buffer it writes to.
func SetupTestLogger(t *testing.T) (*logging.Logger, *Buffer) {
	t.Helper()

	buf := new(Buffer)
	return logging.NewConsoleLogger(slog.LevelDebug, buf), buf
}
