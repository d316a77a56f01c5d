package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrCallNotFinished = errors.New("call not finished")

type (
	CallID string

	Call struct {
		id        CallID
		query     string
		timestamp time.Time

		mu        sync.RWMutex
		state     CallState
		timeTaken time.Duration
		// any error that might occur during execution
		err error

		result     *Result
		cancelFunc func()

		done chan struct{}
	}
)

// callPersistent is used for marshaling the call
type callPersistent struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	State     string `json:"state"`
	TimeTaken int64  `json:"time_taken_us"`
	Timestamp int64  `json:"timestamp_us"`
	Error     string `json:"error,omitempty"`
}

func (c *Call) toPersistent() *callPersistent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	errMsg := ""
	if c.err != nil {
		errMsg = c.err.Error()
	}

	return &callPersistent{
		ID:        string(c.id),
		Query:     c.query,
		State:     c.state.String(),
		TimeTaken: c.timeTaken.Microseconds(),
		Timestamp: c.timestamp.UnixMicro(),
		Error:     errMsg,
	}
}

func (c *Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toPersistent())
}

func newCallFromExecutor(executor func(context.Context) (ResultStream, error), query string, onEvent func(CallState, *Call)) *Call {
	c := &Call{
		id:    CallID(uuid.New().String()),
		query: query,
		state: CallStateUnknown,

		result: new(Result),

		done: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.timestamp = time.Now()
	c.cancelFunc = cancel

	eventsCh := make(chan CallState, 10)

	// failed returns the state of a failed step, taking cancellation into account
	failed := func(state CallState) CallState {
		if ctx.Err() != nil {
			return CallStateCanceled
		}
		return state
	}

	// event function handler
	go func() {
		defer close(c.done)
		for state := range eventsCh {
			if onEvent != nil {
				onEvent(state, c)
			}
		}
	}()

	go func() {
		defer close(eventsCh)
		defer cancel()

		c.setState(CallStateExecuting, nil, eventsCh)

		iter, err := executor(ctx)
		if err != nil {
			c.setState(failed(CallStateExecutingFailed), err, eventsCh)
			return
		}

		err = c.result.SetIter(ctx, iter, func() { c.setState(CallStateRetrieving, nil, eventsCh) })
		if err != nil {
			c.setState(failed(CallStateRetrievingFailed), err, eventsCh)
			return
		}

		c.setState(CallStateSucceeded, nil, eventsCh)
	}()

	return c
}

// setState transitions the call and queues the event.
// Terminal states are final.
func (c *Call) setState(state CallState, err error, events chan<- CallState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsFailed() || c.state == CallStateSucceeded {
		return
	}
	c.state = state
	if err != nil {
		c.err = err
	}
	c.timeTaken = time.Since(c.timestamp)

	events <- state
}

func (c *Call) GetID() CallID {
	return c.id
}

func (c *Call) GetQuery() string {
	return c.query
}

func (c *Call) GetState() CallState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Call) GetTimeTaken() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeTaken
}

func (c *Call) GetTimestamp() time.Time {
	return c.timestamp
}

func (c *Call) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Done returns a non-buffered channel that is closed when
// call finishes and all events were delivered.
func (c *Call) Done() chan struct{} {
	return c.done
}

// Wait blocks until the call finishes or ctx is done. In the latter case
// the call is canceled and ctx's error is returned.
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		c.Cancel()
		<-c.done
		return ctx.Err()
	}
}

// Cancel stops the call while it is executing or retrieving rows.
// Finished calls are left as they are.
func (c *Call) Cancel() {
	state := c.GetState()
	if state == CallStateSucceeded || state.IsFailed() {
		return
	}
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
}

// GetResult returns the result of the call. Rows become available as soon as
// the call enters the retrieving state.
func (c *Call) GetResult() (*Result, error) {
	state := c.GetState()
	if state != CallStateRetrieving && state != CallStateSucceeded {
		if state.IsFailed() {
			return nil, c.Err()
		}
		return nil, ErrCallNotFinished
	}

	return c.result, nil
}
