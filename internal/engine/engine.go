// Package engine executes typed operations against the keyspace store.
//
// Every command is a value implementing Operation. Engine.Exec runs it and
// always returns a Result: absence is Nil, client mistakes are Error results,
// and internal faults (a poisoned type map, a recovered panic) are logged and
// reported as an Error for that command only.
package engine

import (
	"context"
	"errors"
	"time"

	"keygrid/internal/blocking"
	"keygrid/internal/logger"
	"keygrid/internal/store"

	"github.com/sirupsen/logrus"
)

// Operation is one parsed command.
type Operation interface {
	// Name is the command name, upper case.
	Name() string
	exec(ctx context.Context, e *Engine) Result
}

// Saver is the persistence side of SAVE, BGSAVE and LASTSAVE.
type Saver interface {
	Save() error
	BackgroundSave() error
	LastSave() time.Time
}

// InfoFunc renders the INFO text for a section ("" means all).
type InfoFunc func(section string) string

type Engine struct {
	store   *store.Store
	waiters *blocking.Coordinator
	saver   Saver
	info    InfoFunc
}

type Option func(*Engine)

// WithCoordinator shares a waiter table with other components.
func WithCoordinator(c *blocking.Coordinator) Option {
	return func(e *Engine) { e.waiters = c }
}

func WithSaver(s Saver) Option {
	return func(e *Engine) { e.saver = s }
}

func WithInfo(f InfoFunc) Option {
	return func(e *Engine) { e.info = f }
}

func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s}
	for _, o := range opts {
		o(e)
	}
	if e.waiters == nil {
		e.waiters = blocking.New()
	}
	return e
}

func (e *Engine) Store() *store.Store { return e.store }

func (e *Engine) Waiters() *blocking.Coordinator { return e.waiters }

// SetInfo replaces the INFO renderer. It must be called before serving.
func (e *Engine) SetInfo(f InfoFunc) { e.info = f }

// Exec runs op and returns its result. It never panics.
func (e *Engine) Exec(ctx context.Context, op Operation) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"command": op.Name(),
				"panic":   r,
			}).Error("command panicked")
			res = Errorf("internal error executing '%s'", op.Name())
		}
	}()
	logger.Debugf("exec %s", op.Name())
	return op.exec(ctx, e)
}

// fault reports a store failure for one command.
func (e *Engine) fault(op string, err error) Result {
	logger.WithFields(logrus.Fields{
		"command": op,
		"error":   err,
	}).Error("command failed")
	if errors.Is(err, store.ErrPoisoned) || errors.Is(err, store.ErrFault) {
		return Errorf("internal error executing '%s': %v", op, err)
	}
	return Error(err.Error())
}

// wake tells blocked commands that key may have new data.
func (e *Engine) wake(key string) {
	if n := e.waiters.Wake(key); n > 0 {
		logger.Debugf("woke %d waiters on %s", n, key)
	}
}

// blockingContext derives the deadline for a blocking command. A zero
// timeout waits until ctx ends.
func blockingContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// await runs try until it succeeds or the blocking deadline passes. A missed
// deadline or a cancelled context resolves to Nil.
func (e *Engine) await(ctx context.Context, name string, keys []string, timeout time.Duration, try func() (Result, bool, error)) Result {
	ctx, cancel := blockingContext(ctx, timeout)
	defer cancel()

	var res Result
	err := e.waiters.Await(ctx, keys, func() (bool, error) {
		r, ok, err := try()
		if ok {
			res = r
		}
		return ok, err
	})
	switch {
	case err == nil:
		return res
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Nil()
	default:
		return e.fault(name, err)
	}
}
