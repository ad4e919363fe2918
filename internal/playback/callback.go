package playback

import (
	"context"
	"sync"
)

// Callback is a completion handle resolved exactly once, either done or
// rejected. Later resolutions are ignored.
type Callback struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewCallback creates an unresolved Callback
func NewCallback() *Callback {
	return &Callback{done: make(chan struct{})}
}

// SetDone resolves the callback successfully
func (c *Callback) SetDone() {
	c.resolve(nil)
}

// Reject resolves the callback with err
func (c *Callback) Reject(err error) {
	c.resolve(err)
}

func (c *Callback) resolve(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// IsResolved reports whether the callback has an outcome
func (c *Callback) IsResolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the callback resolves or ctx is done. A cancelled wait
// returns the context error.
func (c *Callback) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
