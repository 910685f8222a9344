package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"keygrid/internal/logger"

	"github.com/sirupsen/logrus"
)

// ErrPoisoned is returned by every operation on a typed map after a mutation
// panicked while holding its lock. The contents may be half-written, so the
// map refuses further access instead of serving them.
var ErrPoisoned = errors.New("store: type map poisoned by an earlier failure")

// ErrFault is returned when a read-only callback panics. Reads cannot leave
// the map half-written, so they do not poison it.
var ErrFault = errors.New("store: operation failed")

// Action tells Update, Mutate and Upsert what the callback did. Only Put and
// Remove count as changes.
type Action int

const (
	// Skip leaves the map untouched.
	Skip Action = iota
	// Put stores the value under the key.
	Put
	// Remove deletes the key.
	Remove
)

// Outcome is the Action for a container callback: Remove once the container
// is empty, Put when it changed, Skip otherwise.
func Outcome(changed, keep bool) Action {
	switch {
	case !keep:
		return Remove
	case changed:
		return Put
	default:
		return Skip
	}
}

// TypedMap is the keyspace of one value type: a map guarded by a single
// reader/writer lock. Many readers or one writer hold the lock at a time.
type TypedMap[T any] struct {
	name     string
	mu       sync.RWMutex
	items    map[string]T
	poisoned atomic.Bool
	changes  *atomic.Int64
}

func newTypedMap[T any](name string, changes *atomic.Int64) *TypedMap[T] {
	if changes == nil {
		changes = new(atomic.Int64)
	}
	return &TypedMap[T]{
		name:    name,
		items:   make(map[string]T),
		changes: changes,
	}
}

// Name returns the type name this map holds ("list", "hash", ...).
func (m *TypedMap[T]) Name() string { return m.name }

// Poisoned reports whether an earlier mutation failed mid-way.
func (m *TypedMap[T]) Poisoned() bool { return m.poisoned.Load() }

func (m *TypedMap[T]) check() error {
	if m.poisoned.Load() {
		return fmt.Errorf("%w (%s)", ErrPoisoned, m.name)
	}
	return nil
}

// recoverInto turns a panic raised by a callback into ErrPoisoned or ErrFault.
// It must be deferred after the unlock so it runs while the lock is held.
func (m *TypedMap[T]) recoverInto(err *error, poison bool) {
	r := recover()
	if r == nil {
		return
	}
	if poison {
		m.poisoned.Store(true)
	}
	logger.WithFields(logrus.Fields{
		"type":  m.name,
		"panic": r,
	}).Error("store operation panicked")
	if poison {
		*err = fmt.Errorf("%w (%s): %v", ErrPoisoned, m.name, r)
		return
	}
	*err = fmt.Errorf("%w (%s): %v", ErrFault, m.name, r)
}

// View runs fn on the value stored under key while holding the shared lock.
// It reports whether the key was present. fn must not retain or mutate v.
func (m *TypedMap[T]) View(key string, fn func(v T)) (found bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defer m.recoverInto(&err, false)
	if err := m.check(); err != nil {
		return false, err
	}

	v, ok := m.items[key]
	if !ok {
		return false, nil
	}
	fn(v)
	return true, nil
}

// Get returns a copy of the value stored under key.
func (m *TypedMap[T]) Get(key string) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var zero T
	if err := m.check(); err != nil {
		return zero, false, err
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// Set stores v under key, replacing any previous value.
func (m *TypedMap[T]) Set(key string, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.items[key] = v
	m.changes.Add(1)
	return nil
}

// Update is the general read-modify-write primitive. fn sees the current value
// (zero value and false when absent) and decides whether to store a new
// value, delete the key, or leave the map untouched.
func (m *TypedMap[T]) Update(key string, fn func(old T, exists bool) (T, Action)) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recoverInto(&err, true)
	if err := m.check(); err != nil {
		return err
	}

	old, ok := m.items[key]
	v, action := fn(old, ok)
	switch action {
	case Put:
		m.items[key] = v
		m.changes.Add(1)
	case Remove:
		if ok {
			delete(m.items, key)
			m.changes.Add(1)
		}
	}
	return nil
}

// Mutate runs fn on an existing container under the exclusive lock. It never
// creates a container. When fn returns Remove the key is deleted, which is how
// containers drained to empty leave the keyspace; Skip means fn changed nothing.
func (m *TypedMap[T]) Mutate(key string, fn func(v T) Action) (found bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recoverInto(&err, true)
	if err := m.check(); err != nil {
		return false, err
	}

	v, ok := m.items[key]
	if !ok {
		return false, nil
	}
	switch fn(v) {
	case Remove:
		delete(m.items, key)
		m.changes.Add(1)
	case Put:
		m.changes.Add(1)
	}
	return true, nil
}

// Upsert creates the container with create when key is absent and runs fn on
// it, all inside one critical section. Creating the container is a change
// unless fn returns Remove, in which case the key is left as it was found.
func (m *TypedMap[T]) Upsert(key string, create func() T, fn func(v T) Action) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recoverInto(&err, true)
	if err := m.check(); err != nil {
		return err
	}

	v, ok := m.items[key]
	if !ok {
		v = create()
		m.items[key] = v
	}
	switch action := fn(v); {
	case action == Remove:
		delete(m.items, key)
		if ok {
			m.changes.Add(1)
		}
	case action == Put || !ok:
		m.changes.Add(1)
	}
	return nil
}

// CreateIfAbsent inserts create() under key unless a value is already there.
// It reports whether a new value was inserted.
func (m *TypedMap[T]) CreateIfAbsent(key string, create func() T) (created bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recoverInto(&err, true)
	if err := m.check(); err != nil {
		return false, err
	}

	if _, ok := m.items[key]; ok {
		return false, nil
	}
	m.items[key] = create()
	m.changes.Add(1)
	return true, nil
}

// Exclusive hands fn the whole map under the exclusive lock. Used by
// operations that touch several keys of the same type at once. fn reports
// whether it changed anything.
func (m *TypedMap[T]) Exclusive(fn func(items map[string]T) (changed bool)) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recoverInto(&err, true)
	if err := m.check(); err != nil {
		return err
	}

	if fn(m.items) {
		m.changes.Add(1)
	}
	return nil
}

// Shared hands fn the whole map under the shared lock.
func (m *TypedMap[T]) Shared(fn func(items map[string]T)) (err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defer m.recoverInto(&err, false)
	if err := m.check(); err != nil {
		return err
	}

	fn(m.items)
	return nil
}

// Delete removes the given keys and returns how many existed.
func (m *TypedMap[T]) Delete(keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return 0, err
	}

	n := 0
	for _, k := range keys {
		if _, ok := m.items[k]; ok {
			delete(m.items, k)
			n++
		}
	}
	if n > 0 {
		m.changes.Add(int64(n))
	}
	return n, nil
}

// Exists reports whether key is present.
func (m *TypedMap[T]) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return false, err
	}
	_, ok := m.items[key]
	return ok, nil
}

// Len returns the number of keys.
func (m *TypedMap[T]) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return 0, err
	}
	return len(m.items), nil
}

// Keys returns every key in unspecified order.
func (m *TypedMap[T]) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys, nil
}

// Rename moves the value under src to dst, overwriting dst.
func (m *TypedMap[T]) Rename(src, dst string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return false, err
	}
	v, ok := m.items[src]
	if !ok {
		return false, nil
	}
	if src != dst {
		delete(m.items, src)
		m.items[dst] = v
	}
	m.changes.Add(1)
	return true, nil
}

// Clear drops every key. A poisoned map is reset to a healthy empty state.
func (m *TypedMap[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) > 0 {
		m.changes.Add(int64(len(m.items)))
	}
	m.items = make(map[string]T)
	m.poisoned.Store(false)
}

// load replaces the contents wholesale. Used when restoring a snapshot.
func (m *TypedMap[T]) load(items map[string]T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if items == nil {
		items = make(map[string]T)
	}
	m.items = items
}

// copyOut copies every entry through conv under the shared lock.
func copyOut[T, S any](m *TypedMap[T], conv func(T) S) (map[string]S, error) {
	out := make(map[string]S)
	err := m.Shared(func(items map[string]T) {
		for k, v := range items {
			out[k] = conv(v)
		}
	})
	return out, err
}
