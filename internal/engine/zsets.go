package engine

import (
	"context"

	"keygrid/internal/store"
)

// scored flattens entries into a reply, interleaving scores when asked.
func scored(entries []store.ZEntry, withScores bool) Result {
	out := make([]string, 0, len(entries)*2)
	for _, en := range entries {
		out = append(out, en.Member)
		if withScores {
			out = append(out, FormatScore(en.Score))
		}
	}
	return Multi(out)
}

// ZAdd adds members with scores, updating the score of existing members.
type ZAdd struct {
	Key     string
	Entries []store.ZEntry
}

func (ZAdd) Name() string { return "ZADD" }

func (op ZAdd) exec(_ context.Context, e *Engine) Result {
	added := 0
	err := e.store.ZSets.Upsert(op.Key, store.NewSortedSet, func(z *store.SortedSet) store.Action {
		changed := false
		for _, en := range op.Entries {
			old, had := z.Score(en.Member)
			if z.Add(en.Member, en.Score) {
				added++
			}
			changed = changed || !had || old != en.Score
		}
		return store.Outcome(changed, z.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(added))
}

type ZRem struct {
	Key     string
	Members []string
}

func (ZRem) Name() string { return "ZREM" }

func (op ZRem) exec(_ context.Context, e *Engine) Result {
	n := 0
	_, err := e.store.ZSets.Mutate(op.Key, func(z *store.SortedSet) store.Action {
		n = z.Remove(op.Members...)
		return store.Outcome(n > 0, z.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type ZCard struct{ Key string }

func (ZCard) Name() string { return "ZCARD" }

func (op ZCard) exec(_ context.Context, e *Engine) Result {
	n := 0
	if _, err := e.store.ZSets.View(op.Key, func(z *store.SortedSet) { n = z.Len() }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

type ZScore struct{ Key, Member string }

func (ZScore) Name() string { return "ZSCORE" }

func (op ZScore) exec(_ context.Context, e *Engine) Result {
	var (
		score float64
		ok    bool
	)
	if _, err := e.store.ZSets.View(op.Key, func(z *store.SortedSet) { score, ok = z.Score(op.Member) }); err != nil {
		return e.fault(op.Name(), err)
	}
	return StrOrNil(FormatScore(score), ok)
}

type ZIncrBy struct {
	Key    string
	Delta  float64
	Member string
}

func (ZIncrBy) Name() string { return "ZINCRBY" }

func (op ZIncrBy) exec(_ context.Context, e *Engine) Result {
	var (
		score  float64
		failed error
	)
	err := e.store.ZSets.Upsert(op.Key, store.NewSortedSet, func(z *store.SortedSet) store.Action {
		score, failed = z.IncrBy(op.Member, op.Delta)
		return store.Outcome(failed == nil, z.Len() > 0)
	})
	switch {
	case err != nil:
		return e.fault(op.Name(), err)
	case failed != nil:
		return Error(failed.Error())
	}
	return Str(FormatScore(score))
}

// ZRank serves ZRANK and, with Reverse, ZREVRANK.
type ZRank struct {
	Key, Member string
	Reverse     bool
}

func (op ZRank) Name() string {
	if op.Reverse {
		return "ZREVRANK"
	}
	return "ZRANK"
}

func (op ZRank) exec(_ context.Context, e *Engine) Result {
	var (
		rank int
		ok   bool
	)
	if _, err := e.store.ZSets.View(op.Key, func(z *store.SortedSet) { rank, ok = z.Rank(op.Member, op.Reverse) }); err != nil {
		return e.fault(op.Name(), err)
	}
	if !ok {
		return Nil()
	}
	return Int(int64(rank))
}

// ZRange serves ZRANGE and, with Reverse, ZREVRANGE.
type ZRange struct {
	Key         string
	Start, Stop int
	Reverse     bool
	WithScores  bool
}

func (op ZRange) Name() string {
	if op.Reverse {
		return "ZREVRANGE"
	}
	return "ZRANGE"
}

func (op ZRange) exec(_ context.Context, e *Engine) Result {
	var entries []store.ZEntry
	_, err := e.store.ZSets.View(op.Key, func(z *store.SortedSet) {
		entries = z.Range(op.Start, op.Stop, op.Reverse)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return scored(entries, op.WithScores)
}

type ZRangeByScore struct {
	Key        string
	Min, Max   store.ScoreBound
	WithScores bool
}

func (ZRangeByScore) Name() string { return "ZRANGEBYSCORE" }

func (op ZRangeByScore) exec(_ context.Context, e *Engine) Result {
	var entries []store.ZEntry
	_, err := e.store.ZSets.View(op.Key, func(z *store.SortedSet) {
		entries = z.RangeByScore(op.Min, op.Max)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return scored(entries, op.WithScores)
}

type ZCount struct {
	Key      string
	Min, Max store.ScoreBound
}

func (ZCount) Name() string { return "ZCOUNT" }

func (op ZCount) exec(_ context.Context, e *Engine) Result {
	n := 0
	if _, err := e.store.ZSets.View(op.Key, func(z *store.SortedSet) { n = z.Count(op.Min, op.Max) }); err != nil {
		return e.fault(op.Name(), err)
	}
	return Int(int64(n))
}

// ZPop serves ZPOPMIN and, with Max, ZPOPMAX. Replies interleave members and
// scores.
type ZPop struct {
	Key   string
	Count int
	Max   bool
}

func (op ZPop) Name() string {
	if op.Max {
		return "ZPOPMAX"
	}
	return "ZPOPMIN"
}

func (op ZPop) exec(_ context.Context, e *Engine) Result {
	var entries []store.ZEntry
	_, err := e.store.ZSets.Mutate(op.Key, func(z *store.SortedSet) store.Action {
		if op.Max {
			entries = z.PopMax(op.Count)
		} else {
			entries = z.PopMin(op.Count)
		}
		return store.Outcome(len(entries) > 0, z.Len() > 0)
	})
	if err != nil {
		return e.fault(op.Name(), err)
	}
	return scored(entries, true)
}
