package engine

import (
	"context"
	"strconv"

	"keygrid/internal/store"
)

type Get struct{ Key string }

func (Get) Name() string { return "GET" }

func (op Get) exec(_ context.Context, e *Engine) Result {
	v, ok, err := e.store.Strings.Get(op.Key)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(v, ok)
}

// SetMode restricts SET to absent (NX) or present (XX) keys.
type SetMode int

const (
	SetAlways SetMode = iota
	SetIfAbsent
	SetIfPresent
)

type Set struct {
	Key, Value string
	Mode       SetMode
}

func (Set) Name() string { return "SET" }

func (op Set) exec(_ context.Context, e *Engine) Result {
	written := false
	err := e.store.Strings.Update(op.Key, func(_ string, exists bool) (string, store.Action) {
		if (op.Mode == SetIfAbsent && exists) || (op.Mode == SetIfPresent && !exists) {
			return "", store.Skip
		}
		written = true
		return op.Value, store.Put
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	if !written {
		return Nil()
	}
	return OK()
}

// SetNX is the integer-reply form of SET NX.
type SetNX struct{ Key, Value string }

func (SetNX) Name() string { return "SETNX" }

func (op SetNX) exec(_ context.Context, e *Engine) Result {
	created, err := e.store.Strings.CreateIfAbsent(op.Key, func() string { return op.Value })
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Bool(created)
}

// GetSet stores Value and returns the previous value.
type GetSet struct{ Key, Value string }

func (GetSet) Name() string { return "GETSET" }

func (op GetSet) exec(_ context.Context, e *Engine) Result {
	var (
		prev string
		had  bool
	)
	err := e.store.Strings.Update(op.Key, func(old string, exists bool) (string, store.Action) {
		prev, had = old, exists
		return op.Value, store.Put
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(prev, had)
}

type MGet struct{ Keys []string }

func (MGet) Name() string { return "MGET" }

func (op MGet) exec(_ context.Context, e *Engine) Result {
	out := make([]Result, 0, len(op.Keys))
	err := e.store.Strings.Shared(func(items map[string]string) {
		for _, k := range op.Keys {
			v, ok := items[k]
			out = append(out, StrOrNil(v, ok))
		}
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Array(out...)
}

// MSet writes every pair under one lock so readers never see half of it.
type MSet struct{ Pairs []string }

func (MSet) Name() string { return "MSET" }

func (op MSet) exec(_ context.Context, e *Engine) Result {
	err := e.store.Strings.Exclusive(func(items map[string]string) bool {
		for i := 0; i+1 < len(op.Pairs); i += 2 {
			items[op.Pairs[i]] = op.Pairs[i+1]
		}
		return true
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return OK()
}

type Append struct{ Key, Value string }

func (Append) Name() string { return "APPEND" }

func (op Append) exec(_ context.Context, e *Engine) Result {
	n := 0
	err := e.store.Strings.Update(op.Key, func(old string, _ bool) (string, store.Action) {
		v := old + op.Value
		n = len(v)
		return v, store.Put
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type StrLen struct{ Key string }

func (StrLen) Name() string { return "STRLEN" }

func (op StrLen) exec(_ context.Context, e *Engine) Result {
	v, _, err := e.store.Strings.Get(op.Key)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(len(v)))
}

// IncrBy backs INCR, DECR, INCRBY and DECRBY. Cmd is the name reported in
// logs and errors.
type IncrBy struct {
	Cmd   string
	Key   string
	Delta int64
}

func (op IncrBy) Name() string {
	if op.Cmd == "" {
		return "INCRBY"
	}
	return op.Cmd
}

func (op IncrBy) exec(_ context.Context, e *Engine) Result {
	var (
		next   int64
		failed error
	)
	err := e.store.Strings.Update(op.Key, func(old string, exists bool) (string, store.Action) {
		cur := int64(0)
		if exists {
			n, err := strconv.ParseInt(old, 10, 64)
			if err != nil {
				failed = store.ErrNotInteger
				return "", store.Skip
			}
			cur = n
		}
		if next, failed = store.AddInt64(cur, op.Delta); failed != nil {
			return "", store.Skip
		}
		return strconv.FormatInt(next, 10), store.Put
	})
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case failed != nil:
		return Error(failed.Error())
	}
	return Int(next)
}
