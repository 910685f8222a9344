package engine

import (
	"context"

	"keygrid/internal/store"
)

// HSet sets field/value pairs and returns how many fields were new.
type HSet struct {
	Key   string
	Pairs []string
}

func (HSet) Name() string { return "HSET" }

func (op HSet) exec(_ context.Context, e *Engine) Result {
	added := 0
	err := e.store.Hashes.Upsert(op.Key, store.NewHash, func(h *store.Hash) store.Action {
		changed := false
		for i := 0; i+1 < len(op.Pairs); i += 2 {
			old, had := h.Get(op.Pairs[i])
			if h.Set(op.Pairs[i], op.Pairs[i+1]) {
				added++
			}
			changed = changed || !had || old != op.Pairs[i+1]
		}
		return store.Outcome(changed, h.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(added))
}

type HSetNX struct{ Key, Field, Value string }

func (HSetNX) Name() string { return "HSETNX" }

func (op HSetNX) exec(_ context.Context, e *Engine) Result {
	set := false
	err := e.store.Hashes.Upsert(op.Key, store.NewHash, func(h *store.Hash) store.Action {
		set = h.SetNX(op.Field, op.Value)
		return store.Outcome(set, h.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Bool(set)
}

type HGet struct{ Key, Field string }

func (HGet) Name() string { return "HGET" }

func (op HGet) exec(_ context.Context, e *Engine) Result {
	var (
		v  string
		ok bool
	)
	if _, err := e.store.Hashes.View(op.Key, func(h *store.Hash) { v, ok = h.Get(op.Field) }); err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(v, ok)
}

type HMGet struct {
	Key    string
	Fields []string
}

func (HMGet) Name() string { return "HMGET" }

func (op HMGet) exec(_ context.Context, e *Engine) Result {
	out := make([]Result, len(op.Fields))
	for i := range out {
		out[i] = Nil()
	}
	_, err := e.store.Hashes.View(op.Key, func(h *store.Hash) {
		for i, f := range op.Fields {
			out[i] = StrOrNil(h.Get(f))
		}
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Array(out...)
}

type HDel struct {
	Key    string
	Fields []string
}

func (HDel) Name() string { return "HDEL" }

func (op HDel) exec(_ context.Context, e *Engine) Result {
	n := 0
	_, err := e.store.Hashes.Mutate(op.Key, func(h *store.Hash) store.Action {
		n = h.Del(op.Fields...)
		return store.Outcome(n > 0, h.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type HExists struct{ Key, Field string }

func (HExists) Name() string { return "HEXISTS" }

func (op HExists) exec(_ context.Context, e *Engine) Result {
	ok := false
	if _, err := e.store.Hashes.View(op.Key, func(h *store.Hash) { ok = h.Exists(op.Field) }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Bool(ok)
}

// hashView covers the commands that return one projection of a whole hash.
func (e *Engine) hashView(name, key string, project func(*store.Hash) []string) Result {
	var out []string
	if _, err := e.store.Hashes.View(key, func(h *store.Hash) { out = project(h) }); err != nil {
		return e.fault(name, err)
	}
	return Multi(out)
}

type HGetAll struct{ Key string }

func (HGetAll) Name() string { return "HGETALL" }

func (op HGetAll) exec(_ context.Context, e *Engine) Result {
	return e.hashView(op.Name(), op.Key, (*store.Hash).Pairs)
}

type HKeys struct{ Key string }

func (HKeys) Name() string { return "HKEYS" }

func (op HKeys) exec(_ context.Context, e *Engine) Result {
	return e.hashView(op.Name(), op.Key, (*store.Hash).Keys)
}

type HVals struct{ Key string }

func (HVals) Name() string { return "HVALS" }

func (op HVals) exec(_ context.Context, e *Engine) Result {
	return e.hashView(op.Name(), op.Key, (*store.Hash).Values)
}

type HLen struct{ Key string }

func (HLen) Name() string { return "HLEN" }

func (op HLen) exec(_ context.Context, e *Engine) Result {
	n := 0
	if _, err := e.store.Hashes.View(op.Key, func(h *store.Hash) { n = h.Len() }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type HStrLen struct{ Key, Field string }

func (HStrLen) Name() string { return "HSTRLEN" }

func (op HStrLen) exec(_ context.Context, e *Engine) Result {
	n := 0
	_, err := e.store.Hashes.View(op.Key, func(h *store.Hash) {
		v, _ := h.Get(op.Field)
		n = len(v)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type HIncrBy struct {
	Key, Field string
	Delta      int64
}

func (HIncrBy) Name() string { return "HINCRBY" }

func (op HIncrBy) exec(_ context.Context, e *Engine) Result {
	var (
		next   int64
		failed error
	)
	err := e.store.Hashes.Upsert(op.Key, store.NewHash, func(h *store.Hash) store.Action {
		next, failed = h.IncrBy(op.Field, op.Delta)
		return store.Outcome(failed == nil, h.Len() > 0)
	})
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case failed != nil:
		return Error(failed.Error())
	}
	return Int(next)
}
