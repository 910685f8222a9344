package store

import (
	"math"

	"github.com/google/btree"
)

// ZEntry is one member of a sorted set with its score.
type ZEntry struct {
	Member string
	Score  float64
}

func zLess(a, b ZEntry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

// ScoreBound is one end of a score interval, optionally exclusive.
type ScoreBound struct {
	Value     float64
	Exclusive bool
}

func (b ScoreBound) belowOrAt(score float64) bool {
	if b.Exclusive {
		return b.Value < score
	}
	return b.Value <= score
}

func (b ScoreBound) aboveOrAt(score float64) bool {
	if b.Exclusive {
		return score < b.Value
	}
	return score <= b.Value
}

// SortedSet keeps members ordered by (score, member). Scores live in a map for
// point lookups and the ordering lives in a B-tree.
type SortedSet struct {
	scores map[string]float64
	tree   *btree.BTreeG[ZEntry]
}

func NewSortedSet() *SortedSet {
	return &SortedSet{
		scores: make(map[string]float64),
		tree:   btree.NewG[ZEntry](32, zLess),
	}
}

// Add sets member's score and reports whether the member is new.
func (z *SortedSet) Add(member string, score float64) bool {
	old, ok := z.scores[member]
	if ok {
		if old == score {
			return false
		}
		z.tree.Delete(ZEntry{Member: member, Score: old})
	}
	z.scores[member] = score
	z.tree.ReplaceOrInsert(ZEntry{Member: member, Score: score})
	return !ok
}

// IncrBy adds delta to member's score, creating it at delta when absent.
func (z *SortedSet) IncrBy(member string, delta float64) (float64, error) {
	next := z.scores[member] + delta
	if math.IsNaN(next) {
		return 0, ErrNaN
	}
	z.Add(member, next)
	return next, nil
}

// Remove deletes members and returns how many existed.
func (z *SortedSet) Remove(members ...string) int {
	n := 0
	for _, m := range members {
		if s, ok := z.scores[m]; ok {
			delete(z.scores, m)
			z.tree.Delete(ZEntry{Member: m, Score: s})
			n++
		}
	}
	return n
}

func (z *SortedSet) Score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

func (z *SortedSet) Len() int { return len(z.scores) }

// Rank returns member's 0-based position, ascending or descending.
func (z *SortedSet) Rank(member string, reverse bool) (int, bool) {
	score, ok := z.scores[member]
	if !ok {
		return 0, false
	}
	target := ZEntry{Member: member, Score: score}
	rank := 0
	z.tree.Ascend(func(e ZEntry) bool {
		if !zLess(e, target) {
			return false
		}
		rank++
		return true
	})
	if reverse {
		rank = z.Len() - 1 - rank
	}
	return rank, true
}

// Range returns entries in the inclusive rank range [start, stop] using the
// same clamping as list ranges.
func (z *SortedSet) Range(start, stop int, reverse bool) []ZEntry {
	from, to := ClampRange(start, stop, z.Len())
	out := make([]ZEntry, 0, to-from)
	if from == to {
		return out
	}
	i := 0
	visit := func(e ZEntry) bool {
		if i >= to {
			return false
		}
		if i >= from {
			out = append(out, e)
		}
		i++
		return true
	}
	if reverse {
		z.tree.Descend(visit)
	} else {
		z.tree.Ascend(visit)
	}
	return out
}

// RangeByScore returns entries with min <= score <= max in ascending order,
// honouring exclusive bounds.
func (z *SortedSet) RangeByScore(min, max ScoreBound) []ZEntry {
	out := []ZEntry{}
	pivot := ZEntry{Score: min.Value}
	z.tree.AscendGreaterOrEqual(pivot, func(e ZEntry) bool {
		if !max.aboveOrAt(e.Score) {
			return false
		}
		if min.belowOrAt(e.Score) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Count returns the number of entries within the score interval.
func (z *SortedSet) Count(min, max ScoreBound) int {
	return len(z.RangeByScore(min, max))
}

// PopMin removes and returns up to count lowest-scored entries.
func (z *SortedSet) PopMin(count int) []ZEntry {
	out := []ZEntry{}
	for i := 0; i < count; i++ {
		e, ok := z.tree.DeleteMin()
		if !ok {
			break
		}
		delete(z.scores, e.Member)
		out = append(out, e)
	}
	return out
}

// PopMax removes and returns up to count highest-scored entries.
func (z *SortedSet) PopMax(count int) []ZEntry {
	out := []ZEntry{}
	for i := 0; i < count; i++ {
		e, ok := z.tree.DeleteMax()
		if !ok {
			break
		}
		delete(z.scores, e.Member)
		out = append(out, e)
	}
	return out
}

// Entries returns every entry in ascending order.
func (z *SortedSet) Entries() []ZEntry {
	out := make([]ZEntry, 0, z.Len())
	z.tree.Ascend(func(e ZEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Clone returns an independent copy.
func (z *SortedSet) Clone() *SortedSet {
	c := &SortedSet{
		scores: make(map[string]float64, len(z.scores)),
		tree:   z.tree.Clone(),
	}
	for m, s := range z.scores {
		c.scores[m] = s
	}
	return c
}
