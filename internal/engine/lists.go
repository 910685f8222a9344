package engine

import (
	"context"
	"time"

	"keygrid/internal/store"
)

func newList() *store.List { return store.NewList() }

// LPush pushes each value onto the head of the list, creating it if needed.
type LPush struct {
	Key    string
	Values []string
}

func (LPush) Name() string { return "LPUSH" }

func (op LPush) exec(_ context.Context, e *Engine) Result {
	return e.push(op.Name(), op.Key, op.Values, true, true)
}

// RPush appends values to the tail of the list, creating it if needed.
type RPush struct {
	Key    string
	Values []string
}

func (RPush) Name() string { return "RPUSH" }

func (op RPush) exec(_ context.Context, e *Engine) Result {
	return e.push(op.Name(), op.Key, op.Values, false, true)
}

// LPushX is LPush that only acts on an existing list.
type LPushX struct {
	Key    string
	Values []string
}

func (LPushX) Name() string { return "LPUSHX" }

func (op LPushX) exec(_ context.Context, e *Engine) Result {
	return e.push(op.Name(), op.Key, op.Values, true, false)
}

// RPushX is RPush that only acts on an existing list.
type RPushX struct {
	Key    string
	Values []string
}

func (RPushX) Name() string { return "RPUSHX" }

func (op RPushX) exec(_ context.Context, e *Engine) Result {
	return e.push(op.Name(), op.Key, op.Values, false, false)
}

func (e *Engine) push(name, key string, values []string, front, create bool) Result {
	var n int
	apply := func(l *store.List) store.Action {
		if front {
			n = l.PushFront(values...)
		} else {
			n = l.PushBack(values...)
		}
		return store.Outcome(len(values) > 0, l.Len() > 0)
	}

	if create {
		if err := e.store.Lists.Upsert(key, newList, apply); err != nil {
			return e.fault(name, err)
		}
	} else {
		found, err := e.store.Lists.Mutate(key, apply)
		if err != nil {
			return e.fault(name, err)
		}
		if !found {
			return Int(0)
		}
	}

	if n > 0 {
		e.wake(key)
	}
	return Int(int64(n))
}

// pop removes one element from the head or tail, deleting the list once it
// is empty.
func (e *Engine) pop(key string, front bool) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	_, err := e.store.Lists.Mutate(key, func(l *store.List) store.Action {
		if front {
			v, ok = l.PopFront()
		} else {
			v, ok = l.PopBack()
		}
		return store.Outcome(ok, l.Len() > 0)
	})
	return v, ok, err
}

type LPop struct{ Key string }

func (LPop) Name() string { return "LPOP" }

func (op LPop) exec(_ context.Context, e *Engine) Result {
	v, ok, err := e.pop(op.Key, true)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(v, ok)
}

type RPop struct{ Key string }

func (RPop) Name() string { return "RPOP" }

func (op RPop) exec(_ context.Context, e *Engine) Result {
	v, ok, err := e.pop(op.Key, false)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(v, ok)
}

type LLen struct{ Key string }

func (LLen) Name() string { return "LLEN" }

func (op LLen) exec(_ context.Context, e *Engine) Result {
	n := 0
	if _, err := e.store.Lists.View(op.Key, func(l *store.List) { n = l.Len() }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

// LIndex returns the element at Index; negative indices count from the tail.
type LIndex struct {
	Key   string
	Index int
}

func (LIndex) Name() string { return "LINDEX" }

func (op LIndex) exec(_ context.Context, e *Engine) Result {
	var (
		v  string
		ok bool
	)
	found, err := e.store.Lists.View(op.Key, func(l *store.List) { v, ok = l.Index(op.Index) })
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case !found:
		return Nil()
	case !ok:
		return Error(msgBadRange)
	}
	return Str(v)
}

// LSet replaces the element at Index.
type LSet struct {
	Key   string
	Index int
	Value string
}

func (LSet) Name() string { return "LSET" }

func (op LSet) exec(_ context.Context, e *Engine) Result {
	ok := false
	found, err := e.store.Lists.Mutate(op.Key, func(l *store.List) store.Action {
		ok = l.SetIndex(op.Index, op.Value)
		return store.Outcome(ok, true)
	})
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case !found:
		return Error(msgNoList)
	case !ok:
		return Error(msgBadRange)
	}
	return OK()
}

// LRange returns the inclusive range [Start, Stop] after clamping.
type LRange struct {
	Key         string
	Start, Stop int
}

func (LRange) Name() string { return "LRANGE" }

func (op LRange) exec(_ context.Context, e *Engine) Result {
	var out []string
	if _, err := e.store.Lists.View(op.Key, func(l *store.List) { out = l.Range(op.Start, op.Stop) }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Multi(out)
}

// LTrim keeps only the inclusive range [Start, Stop].
type LTrim struct {
	Key         string
	Start, Stop int
}

func (LTrim) Name() string { return "LTRIM" }

func (op LTrim) exec(_ context.Context, e *Engine) Result {
	_, err := e.store.Lists.Mutate(op.Key, func(l *store.List) store.Action {
		before := l.Len()
		l.Trim(op.Start, op.Stop)
		return store.Outcome(l.Len() != before, l.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return OK()
}

// LRem removes up to Count occurrences of Value; see store.List.Remove.
type LRem struct {
	Key   string
	Count int
	Value string
}

func (LRem) Name() string { return "LREM" }

func (op LRem) exec(_ context.Context, e *Engine) Result {
	n := 0
	_, err := e.store.Lists.Mutate(op.Key, func(l *store.List) store.Action {
		n = l.Remove(op.Count, op.Value)
		return store.Outcome(n > 0, l.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

// RPopLPush atomically moves the tail of Source to the head of Dest. With
// Source == Dest the list rotates.
type RPopLPush struct {
	Source, Dest string
}

func (RPopLPush) Name() string { return "RPOPLPUSH" }

func (op RPopLPush) exec(_ context.Context, e *Engine) Result {
	v, ok, err := e.move(op.Source, op.Dest)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(v, ok)
}

// move runs the whole pop-and-push under the list map's exclusive lock so no
// other command observes the value in neither or both lists.
func (e *Engine) move(src, dst string) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	err := e.store.Lists.Exclusive(func(lists map[string]*store.List) bool {
		from, exists := lists[src]
		if !exists {
			return false
		}
		if v, ok = from.PopBack(); !ok {
			return false
		}
		if from.Len() == 0 {
			delete(lists, src)
		}
		to, exists := lists[dst]
		if !exists {
			to = store.NewList()
			lists[dst] = to
		}
		to.PushFront(v)
		return true
	})
	if err == nil && ok {
		e.wake(dst)
	}
	return v, ok, err
}

// BLPop pops the head of the first non-empty list among Keys, waiting up to
// Timeout (zero waits forever) for one to receive data.
type BLPop struct {
	Keys    []string
	Timeout time.Duration
}

func (BLPop) Name() string { return "BLPOP" }

func (op BLPop) exec(ctx context.Context, e *Engine) Result {
	return e.blockingPop(ctx, op.Name(), op.Keys, op.Timeout, true)
}

// BRPop is BLPop taking from the tail.
type BRPop struct {
	Keys    []string
	Timeout time.Duration
}

func (BRPop) Name() string { return "BRPOP" }

func (op BRPop) exec(ctx context.Context, e *Engine) Result {
	return e.blockingPop(ctx, op.Name(), op.Keys, op.Timeout, false)
}

func (e *Engine) blockingPop(ctx context.Context, name string, keys []string, timeout time.Duration, front bool) Result {
	return e.await(ctx, name, keys, timeout, func() (Result, bool, error) {
		for _, k := range keys {
			v, ok, err := e.pop(k, front)
			if err != nil {
				return Result{}, false, err
			}
			if ok {
				return Multi([]string{k, v}), true, nil
			}
		}
		return Result{}, false, nil
	})
}

// BRPopLPush is RPopLPush that waits for Source to receive data.
type BRPopLPush struct {
	Source, Dest string
	Timeout      time.Duration
}

func (BRPopLPush) Name() string { return "BRPOPLPUSH" }

func (op BRPopLPush) exec(ctx context.Context, e *Engine) Result {
	return e.await(ctx, op.Name(), []string{op.Source}, op.Timeout, func() (Result, bool, error) {
		v, ok, err := e.move(op.Source, op.Dest)
		if err != nil || !ok {
			return Result{}, false, err
		}
		return Str(v), true, nil
	})
}
