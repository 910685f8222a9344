package engine

import "context"

// Del removes keys from every type and returns how many existed.
type Del struct{ Keys []string }

func (Del) Name() string { return "DEL" }

func (op Del) exec(_ context.Context, e *Engine) Result {
	n, err := e.store.Delete(op.Keys...)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

// Exists counts the given keys that are present; repeated keys count again.
type Exists struct{ Keys []string }

func (Exists) Name() string { return "EXISTS" }

func (op Exists) exec(_ context.Context, e *Engine) Result {
	n := 0
	for _, k := range op.Keys {
		ok, err := e.store.Exists(k)
		if err != nil {
			return e.fault(op.Name(), err)
		}
		if ok {
			n++
		}
	}
	return Int(int64(n))
}

type Type struct{ Key string }

func (Type) Name() string { return "TYPE" }

func (op Type) exec(_ context.Context, e *Engine) Result {
	t, err := e.store.Type(op.Key)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Status(t)
}

type Keys struct{ Pattern string }

func (Keys) Name() string { return "KEYS" }

func (op Keys) exec(_ context.Context, e *Engine) Result {
	keys, err := e.store.Keys(op.Pattern)
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Multi(keys)
}

type Rename struct{ Source, Dest string }

func (Rename) Name() string { return "RENAME" }

func (op Rename) exec(_ context.Context, e *Engine) Result {
	ok, err := e.store.Rename(op.Source, op.Dest)
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case !ok:
		return Error(msgNoSuchKey)
	}
	e.wake(op.Dest)
	return OK()
}

type DBSize struct{}

func (DBSize) Name() string { return "DBSIZE" }

func (op DBSize) exec(_ context.Context, e *Engine) Result {
	n, err := e.store.Size()
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

// FlushAll drops every key. It also clears a poisoned type.
type FlushAll struct{}

func (FlushAll) Name() string { return "FLUSHALL" }

func (FlushAll) exec(_ context.Context, e *Engine) Result {
	e.store.Flush()
	return OK()
}
