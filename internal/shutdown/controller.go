// Package shutdown provides the process-wide, set-once stop signal consumed by
// the channel server.
//
// A Controller is created once at start-up and handed to the server loop and
// to whatever external entry point requests a stop (an OS signal watcher or a
// service control handler). RequestStop may be called from any goroutine, any
// number of times; only the first call has an effect and there is no way to
// reset the signal.
package shutdown

import (
	"context"
	"sync"
)

// Controller is the cancellation token shared between the server loop and the
// external stop requester.
type Controller struct {
	once sync.Once
	done chan struct{}
}

// New returns an unsignalled controller.
func New() *Controller {
	return &Controller{done: make(chan struct{})}
}

// RequestStop sets the token. It is idempotent and safe for concurrent use.
func (c *Controller) RequestStop() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Signal is an alias for RequestStop; a no-op once the token is set.
func (c *Controller) Signal() {
	c.RequestStop()
}

// Done returns a channel that is closed once a stop has been requested.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Stopped reports whether a stop has been requested.
func (c *Controller) Stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Context derives a context from parent that is cancelled when either the
// parent ends or a stop is requested. The returned cancel func releases the
// watcher goroutine and must be called.
func (c *Controller) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// StopOnDone requests a stop as soon as ctx ends. It is used to bridge OS
// signal contexts into the controller.
func (c *Controller) StopOnDone(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			c.RequestStop()
		case <-c.done:
		}
	}()
}
