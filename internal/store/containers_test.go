package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hash Tests

func TestHashSetGet(t *testing.T) {
	h := NewHash()
	assert.True(t, h.Set("f1", "v1"))
	assert.False(t, h.Set("f1", "v2"))
	assert.False(t, h.SetNX("f1", "v3"))
	assert.True(t, h.SetNX("f2", "x"))

	v, ok := h.Get("f1")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"f1", "f2"}, h.Keys())
	assert.Equal(t, []string{"v2", "x"}, h.Values())
	assert.Equal(t, []string{"f1", "v2", "f2", "x"}, h.Pairs())

	assert.Equal(t, 1, h.Del("f1", "nope"))
	assert.False(t, h.Exists("f1"))
}

func TestHashIncrBy(t *testing.T) {
	h := NewHash()
	n, err := h.IncrBy("counter", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = h.IncrBy("counter", -7)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)

	h.Set("text", "abc")
	_, err = h.IncrBy("text", 1)
	assert.ErrorIs(t, err, ErrNotInteger)

	h.Set("big", "9223372036854775807")
	_, err = h.IncrBy("big", 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

// Set Tests

func TestSetBasics(t *testing.T) {
	s := NewSet()
	assert.Equal(t, 2, s.Add("a", "b", "a"))
	assert.Equal(t, 1, s.Add("b", "c"))
	assert.True(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Members())
	assert.Equal(t, 1, s.Remove("a", "zzz"))
	assert.Equal(t, 2, s.Len())
}

func TestSetPopAndRandom(t *testing.T) {
	s := NewSet("a", "b", "c")

	r := s.Random(2)
	assert.Len(t, r, 2)
	assert.NotEqual(t, r[0], r[1])
	assert.Equal(t, 3, s.Len())

	assert.Len(t, s.Random(10), 3)
	assert.Len(t, s.Random(-5), 5)

	popped := s.Pop(2)
	assert.Len(t, popped, 2)
	assert.Equal(t, 1, s.Len())
	for _, m := range popped {
		assert.False(t, s.Has(m))
	}
	assert.Empty(t, NewSet().Pop(1))
}

func TestSetAlgebra(t *testing.T) {
	a := NewSet("a", "b", "c")
	b := NewSet("b", "c", "d")
	c := NewSet("c", "e")

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, Union(a, b, c, nil).Members())
	assert.Equal(t, []string{"c"}, Intersect(a, b, c).Members())
	assert.Empty(t, Intersect(a, nil).Members())
	assert.Equal(t, []string{"a"}, Difference(a, b, c).Members())
	assert.Equal(t, []string{"a", "b", "c"}, Difference(a, nil).Members())
	assert.Empty(t, Difference(nil, a).Members())
}

// Sorted set Tests

func TestSortedSetOrdering(t *testing.T) {
	z := NewSortedSet()
	assert.True(t, z.Add("b", 2))
	assert.True(t, z.Add("a", 2))
	assert.True(t, z.Add("c", 1))
	assert.False(t, z.Add("c", 3))

	entries := z.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []ZEntry{{"a", 2}, {"b", 2}, {"c", 3}}, entries)

	rank, ok := z.Rank("b", false)
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	rank, _ = z.Rank("c", true)
	assert.Equal(t, 0, rank)
	_, ok = z.Rank("nope", false)
	assert.False(t, ok)
}

func TestSortedSetRange(t *testing.T) {
	z := NewSortedSet()
	for i, m := range []string{"a", "b", "c", "d"} {
		z.Add(m, float64(i))
	}
	assert.Equal(t, []ZEntry{{"b", 1}, {"c", 2}}, z.Range(1, 2, false))
	assert.Equal(t, []ZEntry{{"d", 3}, {"c", 2}}, z.Range(0, 1, true))
	assert.Equal(t, []ZEntry{{"d", 3}}, z.Range(-1, -1, false))
	assert.Empty(t, z.Range(5, 10, false))
}

func TestSortedSetRangeByScore(t *testing.T) {
	z := NewSortedSet()
	for i, m := range []string{"a", "b", "c", "d"} {
		z.Add(m, float64(i))
	}
	all := z.RangeByScore(ScoreBound{Value: math.Inf(-1)}, ScoreBound{Value: math.Inf(1)})
	assert.Len(t, all, 4)

	got := z.RangeByScore(ScoreBound{Value: 1}, ScoreBound{Value: 2})
	assert.Equal(t, []ZEntry{{"b", 1}, {"c", 2}}, got)

	got = z.RangeByScore(ScoreBound{Value: 1, Exclusive: true}, ScoreBound{Value: 3, Exclusive: true})
	assert.Equal(t, []ZEntry{{"c", 2}}, got)

	assert.Equal(t, 3, z.Count(ScoreBound{Value: 1}, ScoreBound{Value: math.Inf(1)}))
}

func TestSortedSetIncrAndPop(t *testing.T) {
	z := NewSortedSet()
	score, err := z.IncrBy("a", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, score)
	score, err = z.IncrBy("a", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, score)

	z.Add("inf", math.Inf(1))
	_, err = z.IncrBy("inf", math.Inf(-1))
	assert.ErrorIs(t, err, ErrNaN)

	z.Add("b", 0)
	assert.Equal(t, []ZEntry{{"b", 0}}, z.PopMin(1))
	assert.Equal(t, []ZEntry{{"inf", math.Inf(1)}, {"a", 2.5}}, z.PopMax(5))
	assert.Equal(t, 0, z.Len())
}

func TestSortedSetCloneIsIndependent(t *testing.T) {
	z := NewSortedSet()
	z.Add("a", 1)
	c := z.Clone()
	c.Add("b", 2)
	c.Remove("a")
	assert.Equal(t, 1, z.Len())
	_, ok := z.Score("a")
	assert.True(t, ok)
}

// Bloom Tests

func TestBloomAddAndTest(t *testing.T) {
	b, err := NewBloom(100, 0.01)
	require.NoError(t, err)

	assert.True(t, b.Add("apple"))
	assert.False(t, b.Add("apple"))
	assert.True(t, b.Test("apple"))
	assert.False(t, b.Test("definitely-not-added-item-xyz"))
	assert.Greater(t, b.Bits(), uint(0))
	assert.Greater(t, b.Hashes(), uint(0))

	_, err = NewBloom(0, 0.01)
	assert.ErrorIs(t, err, ErrBloomParams)
	_, err = NewBloom(10, 1.5)
	assert.ErrorIs(t, err, ErrBloomParams)
}
