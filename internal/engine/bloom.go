package engine

import (
	"context"

	"keygrid/internal/store"
)

// BFReserve creates an empty filter sized for Capacity items at ErrorRate.
type BFReserve struct {
	Key       string
	ErrorRate float64
	Capacity  uint
}

func (BFReserve) Name() string { return "BF.RESERVE" }

func (op BFReserve) exec(_ context.Context, e *Engine) Result {
	b, err := store.NewBloom(op.Capacity, op.ErrorRate)
	if err != nil {
		return Error(err.Error())
	}
	created, err := e.store.Blooms.CreateIfAbsent(op.Key, func() *store.Bloom { return b })
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case !created:
		return Error("item exists")
	}
	return OK()
}

// BFAdd adds items, creating a default-sized filter when the key is absent.
// With Multi set the reply is one integer per item (BF.MADD).
type BFAdd struct {
	Key   string
	Items []string
	Multi bool
}

func (op BFAdd) Name() string {
	if op.Multi {
		return "BF.MADD"
	}
	return "BF.ADD"
}

func (op BFAdd) exec(_ context.Context, e *Engine) Result {
	added := make([]bool, len(op.Items))
	err := e.store.Blooms.Upsert(op.Key, store.NewDefaultBloom, func(b *store.Bloom) store.Action {
		changed := false
		for i, item := range op.Items {
			added[i] = b.Add(item)
			changed = changed || added[i]
		}
		return store.Outcome(changed, true)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return bools(added, op.Multi)
}

// BFExists tests items; a missing filter contains nothing. With Multi set the
// reply is one integer per item (BF.MEXISTS).
type BFExists struct {
	Key   string
	Items []string
	Multi bool
}

func (op BFExists) Name() string {
	if op.Multi {
		return "BF.MEXISTS"
	}
	return "BF.EXISTS"
}

func (op BFExists) exec(_ context.Context, e *Engine) Result {
	found := make([]bool, len(op.Items))
	_, err := e.store.Blooms.View(op.Key, func(b *store.Bloom) {
		for i, item := range op.Items {
			found[i] = b.Test(item)
		}
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return bools(found, op.Multi)
}

func bools(bs []bool, multi bool) Result {
	if !multi && len(bs) == 1 {
		return Bool(bs[0])
	}
	out := make([]Result, len(bs))
	for i, b := range bs {
		out[i] = Bool(b)
	}
	return Array(out...)
}
