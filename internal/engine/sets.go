package engine

import (
	"context"

	"keygrid/internal/store"
)

type SAdd struct {
	Key     string
	Members []string
}

func (SAdd) Name() string { return "SADD" }

func (op SAdd) exec(_ context.Context, e *Engine) Result {
	n := 0
	err := e.store.Sets.Upsert(op.Key, func() *store.Set { return store.NewSet() }, func(s *store.Set) store.Action {
		n = s.Add(op.Members...)
		return store.Outcome(n > 0, s.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type SRem struct {
	Key     string
	Members []string
}

func (SRem) Name() string { return "SREM" }

func (op SRem) exec(_ context.Context, e *Engine) Result {
	n := 0
	_, err := e.store.Sets.Mutate(op.Key, func(s *store.Set) store.Action {
		n = s.Remove(op.Members...)
		return store.Outcome(n > 0, s.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type SIsMember struct{ Key, Member string }

func (SIsMember) Name() string { return "SISMEMBER" }

func (op SIsMember) exec(_ context.Context, e *Engine) Result {
	ok := false
	if _, err := e.store.Sets.View(op.Key, func(s *store.Set) { ok = s.Has(op.Member) }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Bool(ok)
}

type SMembers struct{ Key string }

func (SMembers) Name() string { return "SMEMBERS" }

func (op SMembers) exec(_ context.Context, e *Engine) Result {
	var out []string
	if _, err := e.store.Sets.View(op.Key, func(s *store.Set) { out = s.Members() }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Multi(out)
}

type SCard struct{ Key string }

func (SCard) Name() string { return "SCARD" }

func (op SCard) exec(_ context.Context, e *Engine) Result {
	n := 0
	if _, err := e.store.Sets.View(op.Key, func(s *store.Set) { n = s.Len() }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

// SPop removes random members. Without a count (HasCount false) the reply is
// a single member or Nil.
type SPop struct {
	Key      string
	Count    int
	HasCount bool
}

func (SPop) Name() string { return "SPOP" }

func (op SPop) exec(_ context.Context, e *Engine) Result {
	count := op.Count
	if !op.HasCount {
		count = 1
	}
	var out []string
	_, err := e.store.Sets.Mutate(op.Key, func(s *store.Set) store.Action {
		out = s.Pop(count)
		return store.Outcome(len(out) > 0, s.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	if !op.HasCount {
		if len(out) == 0 {
			return Nil()
		}
		return Str(out[0])
	}
	return Multi(out)
}

// SRandMember picks members without removing them; see store.Set.Random for
// the meaning of a negative count.
type SRandMember struct {
	Key      string
	Count    int
	HasCount bool
}

func (SRandMember) Name() string { return "SRANDMEMBER" }

func (op SRandMember) exec(_ context.Context, e *Engine) Result {
	count := op.Count
	if !op.HasCount {
		count = 1
	}
	var out []string
	if _, err := e.store.Sets.View(op.Key, func(s *store.Set) { out = s.Random(count) }); err != nil {
		return e.fault(op.Name(), err)
	}
	if !op.HasCount {
		if len(out) == 0 {
			return Nil()
		}
		return Str(out[0])
	}
	return Multi(out)
}

// SMove moves Member from Source to Dest under the set map's exclusive lock.
type SMove struct {
	Source, Dest, Member string
}

func (SMove) Name() string { return "SMOVE" }

func (op SMove) exec(_ context.Context, e *Engine) Result {
	moved := false
	err := e.store.Sets.Exclusive(func(sets map[string]*store.Set) bool {
		src, ok := sets[op.Source]
		if !ok || src.Remove(op.Member) == 0 {
			return false
		}
		moved = true
		if src.Len() == 0 {
			delete(sets, op.Source)
		}
		dst, ok := sets[op.Dest]
		if !ok {
			dst = store.NewSet()
			sets[op.Dest] = dst
		}
		dst.Add(op.Member)
		return true
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Bool(moved)
}

// SetOp selects the algebra used by SetAlgebra.
type SetOp int

const (
	SetUnion SetOp = iota
	SetInter
	SetDiff
)

func (o SetOp) apply(sets ...*store.Set) *store.Set {
	switch o {
	case SetInter:
		return store.Intersect(sets...)
	case SetDiff:
		return store.Difference(sets...)
	default:
		return store.Union(sets...)
	}
}

// SetAlgebra implements SUNION, SINTER and SDIFF and, with Store set, their
// STORE variants writing to Dest. Missing keys count as empty sets.
type SetAlgebra struct {
	Op    SetOp
	Keys  []string
	Store bool
	Dest  string
}

func (op SetAlgebra) Name() string {
	name := [...]string{"SUNION", "SINTER", "SDIFF"}[op.Op]
	if op.Store {
		name += "STORE"
	}
	return name
}

func (op SetAlgebra) exec(_ context.Context, e *Engine) Result {
	var result *store.Set
	collect := func(sets map[string]*store.Set) {
		in := make([]*store.Set, len(op.Keys))
		for i, k := range op.Keys {
			in[i] = sets[k]
		}
		result = op.Op.apply(in...)
	}

	if !op.Store {
		if err := e.store.Sets.Shared(collect); err != nil {
			return e.fault(op.Name(), err)
		}
		return Multi(result.Members())
	}

	err := e.store.Sets.Exclusive(func(sets map[string]*store.Set) bool {
		collect(sets)
		if result.Len() == 0 {
			_, had := sets[op.Dest]
			delete(sets, op.Dest)
			return had
		}
		sets[op.Dest] = result
		return true
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(result.Len()))
}
