// Package blocking lets commands suspend until another command changes one of
// the keys they are waiting on.
//
// The protocol a blocking command follows is: Register on its keys, try the
// operation, and only if that produced nothing Wait. Registering before the
// attempt means a push that lands between the attempt and the wait still
// finds the waiter. A wake is only a hint: the woken command retries and may
// find the value already taken by someone else, in which case it waits again.
package blocking

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// queue holds the waiters registered on one key.
type queue map[uint64]*Waiter

// Coordinator is the waiter table: key -> set of suspended commands.
type Coordinator struct {
	waiters *xsync.MapOf[string, queue]
	nextID  atomic.Uint64
	blocked atomic.Int64
}

func New() *Coordinator {
	return &Coordinator{waiters: xsync.NewMapOf[string, queue]()}
}

// Waiter is one suspended command registered on one or more keys.
type Waiter struct {
	id     uint64
	keys   []string
	c      chan struct{}
	coord  *Coordinator
	cancel sync.Once
}

// Register adds a waiter on every key. The caller must Cancel it when done.
func (c *Coordinator) Register(keys ...string) *Waiter {
	w := &Waiter{
		id:    c.nextID.Add(1),
		keys:  dedupe(keys),
		c:     make(chan struct{}, 1),
		coord: c,
	}
	for _, k := range w.keys {
		c.waiters.Compute(k, func(q queue, loaded bool) (queue, bool) {
			if !loaded {
				q = make(queue)
			}
			q[w.id] = w
			return q, false
		})
	}
	c.blocked.Add(1)
	return w
}

// Wake signals every waiter registered on key and returns how many were
// signalled. It never blocks.
func (c *Coordinator) Wake(key string) int {
	n := 0
	c.waiters.Compute(key, func(q queue, loaded bool) (queue, bool) {
		if !loaded {
			return q, true
		}
		for _, w := range q {
			w.signal()
			n++
		}
		return q, false
	})
	return n
}

// Waiting returns the number of waiters registered on key.
func (c *Coordinator) Waiting(key string) int {
	// queues are only touched inside Compute, which holds the bucket lock
	n := 0
	c.waiters.Compute(key, func(q queue, loaded bool) (queue, bool) {
		if !loaded {
			return q, true
		}
		n = len(q)
		return q, false
	})
	return n
}

// Blocked returns the number of registered, not yet cancelled waiters.
func (c *Coordinator) Blocked() int { return int(c.blocked.Load()) }

// Keys returns the number of keys that currently have waiters.
func (c *Coordinator) Keys() int { return c.waiters.Size() }

func (w *Waiter) signal() {
	select {
	case w.c <- struct{}{}:
	default:
		// already has a pending wake
	}
}

// C returns the wake channel for callers that select on several events.
func (w *Waiter) C() <-chan struct{} { return w.c }

// Wait blocks until the waiter is woken or ctx is done. It returns nil on
// wake and ctx.Err() otherwise.
func (w *Waiter) Wait(ctx context.Context) error {
	select {
	case <-w.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel deregisters the waiter from every key. Keys left without waiters are
// removed from the table. Safe to call more than once.
func (w *Waiter) Cancel() {
	w.cancel.Do(func() {
		for _, k := range w.keys {
			w.coord.waiters.Compute(k, func(q queue, loaded bool) (queue, bool) {
				if !loaded {
					return q, true
				}
				delete(q, w.id)
				return q, len(q) == 0
			})
		}
		w.coord.blocked.Add(-1)
	})
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Await runs try until it reports done, sleeping on keys between attempts.
// The waiter is registered before the first attempt and stays registered
// across retries, so a wake that races with an attempt is kept as a pending
// signal rather than lost. It returns ctx.Err() if ctx ends first.
func (c *Coordinator) Await(ctx context.Context, keys []string, try func() (done bool, err error)) error {
	w := c.Register(keys...)
	defer w.Cancel()
	for {
		done, err := try()
		if err != nil || done {
			return err
		}
		if err := w.Wait(ctx); err != nil {
			return err
		}
	}
}
