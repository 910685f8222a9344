package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewList(t *testing.T) {
	list := NewList()
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, []string{}, list.Values())

	list = NewList("a", "b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, list.Values())
}

func TestListPushFront(t *testing.T) {
	list := NewList()
	assert.Equal(t, 1, list.PushFront("a"))
	assert.Equal(t, 3, list.PushFront("b", "c"))

	// each value goes to the head in turn, so the last one ends up first
	assert.Equal(t, []string{"c", "b", "a"}, list.Values())
}

func TestListPushBack(t *testing.T) {
	list := NewList()
	assert.Equal(t, 1, list.PushBack("a"))
	assert.Equal(t, 3, list.PushBack("b", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, list.Values())
}

func TestListPop(t *testing.T) {
	list := NewList()
	_, ok := list.PopFront()
	assert.False(t, ok)
	_, ok = list.PopBack()
	assert.False(t, ok)

	list.PushBack("a", "b", "c")
	v, ok := list.PopFront()
	require.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = list.PopBack()
	require.True(t, ok)
	assert.Equal(t, "c", v)
	assert.Equal(t, []string{"b"}, list.Values())
}

func TestListGrowAndShrink(t *testing.T) {
	list := NewList()
	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			list.PushBack(fmt.Sprint(i))
		} else {
			list.PushFront(fmt.Sprint(i))
		}
	}
	assert.Equal(t, 1000, list.Len())

	first, _ := list.Index(0)
	last, _ := list.Index(-1)
	assert.Equal(t, "999", first)
	assert.Equal(t, "998", last)

	for i := 0; i < 990; i++ {
		_, ok := list.PopFront()
		require.True(t, ok)
	}
	assert.Equal(t, 10, list.Len())
	assert.LessOrEqual(t, len(list.items), 256)
}

func TestNormalizeIndex(t *testing.T) {
	cases := []struct {
		i, n, want int
		ok         bool
	}{
		{0, 3, 0, true},
		{2, 3, 2, true},
		{3, 3, 3, false},
		{-1, 3, 2, true},
		{-3, 3, 0, true},
		{-4, 3, -1, false},
		{0, 0, 0, false},
	}
	for _, c := range cases {
		got, ok := NormalizeIndex(c.i, c.n)
		assert.Equal(t, c.ok, ok, "index %d of %d", c.i, c.n)
		if ok {
			assert.Equal(t, c.want, got)
		}
	}
}

func TestListIndexAndSet(t *testing.T) {
	list := NewList("a", "b", "c")

	v, ok := list.Index(-1)
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = list.Index(3)
	assert.False(t, ok)
	_, ok = list.Index(-4)
	assert.False(t, ok)

	assert.True(t, list.SetIndex(-2, "B"))
	assert.False(t, list.SetIndex(5, "x"))
	assert.Equal(t, []string{"a", "B", "c"}, list.Values())
}

func TestListRange(t *testing.T) {
	list := NewList("a", "b", "c", "d", "e")

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, list.Range(0, -1))
	assert.Equal(t, []string{"b", "c"}, list.Range(1, 2))
	assert.Equal(t, []string{"d", "e"}, list.Range(-2, -1))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, list.Range(-100, 100))
	assert.Equal(t, []string{}, list.Range(3, 1))
	assert.Equal(t, []string{}, list.Range(10, 20))
	assert.Equal(t, []string{}, list.Range(0, -6))
}

func TestListTrim(t *testing.T) {
	list := NewList("a", "b", "c", "d", "e")
	list.Trim(1, -2)
	assert.Equal(t, []string{"b", "c", "d"}, list.Values())

	list.Trim(5, 10)
	assert.Equal(t, 0, list.Len())

	// still usable after being emptied
	list.PushBack("x")
	assert.Equal(t, []string{"x"}, list.Values())
}

func TestListRemove(t *testing.T) {
	list := NewList("a", "x", "b", "x", "c", "x")
	assert.Equal(t, 2, list.Remove(2, "x"))
	assert.Equal(t, []string{"a", "b", "c", "x"}, list.Values())

	list = NewList("a", "x", "b", "x", "c", "x")
	assert.Equal(t, 2, list.Remove(-2, "x"))
	assert.Equal(t, []string{"a", "x", "b", "c"}, list.Values())

	list = NewList("a", "x", "b", "x", "c", "x")
	assert.Equal(t, 3, list.Remove(0, "x"))
	assert.Equal(t, []string{"a", "b", "c"}, list.Values())

	assert.Equal(t, 0, list.Remove(0, "missing"))
}
