package engine

import (
	"context"
	"testing"

	"keygrid/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return New(store.New())
}

func run(t *testing.T, e *Engine, op Operation) Result {
	t.Helper()
	return e.Exec(context.Background(), op)
}

func TestLPushOrder(t *testing.T) {
	e := newTestEngine()

	res := run(t, e, LPush{Key: "l", Values: []string{"a", "b", "c"}})
	assert.Equal(t, Int(3), res)

	res = run(t, e, LRange{Key: "l", Start: 0, Stop: -1})
	assert.Equal(t, []string{"c", "b", "a"}, res.Multi)

	// RPUSH keeps argument order
	run(t, e, RPush{Key: "r", Values: []string{"a", "b", "c"}})
	res = run(t, e, LRange{Key: "r", Start: 0, Stop: -1})
	assert.Equal(t, []string{"a", "b", "c"}, res.Multi)
}

func TestPushXNeverCreates(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, Int(0), run(t, e, LPushX{Key: "l", Values: []string{"a"}}))
	assert.Equal(t, Int(0), run(t, e, RPushX{Key: "l", Values: []string{"a"}}))
	assert.Equal(t, Int(0), run(t, e, Exists{Keys: []string{"l"}}))

	run(t, e, RPush{Key: "l", Values: []string{"x"}})
	assert.Equal(t, Int(2), run(t, e, LPushX{Key: "l", Values: []string{"a"}}))
	assert.Equal(t, Int(3), run(t, e, RPushX{Key: "l", Values: []string{"z"}}))
	assert.Equal(t, []string{"a", "x", "z"}, run(t, e, LRange{Key: "l", Start: 0, Stop: -1}).Multi)
}

func TestPopAndDrainToEmpty(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"a", "b"}})

	assert.Equal(t, Str("a"), run(t, e, LPop{Key: "l"}))
	assert.Equal(t, Str("b"), run(t, e, RPop{Key: "l"}))
	assert.Equal(t, Nil(), run(t, e, LPop{Key: "l"}))

	// a drained list is gone
	assert.Equal(t, Int(0), run(t, e, LLen{Key: "l"}))
	assert.Equal(t, Int(0), run(t, e, Exists{Keys: []string{"l"}}))
	assert.Equal(t, Status(store.TypeNone), run(t, e, Type{Key: "l"}))
}

func TestLIndexNormalization(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"a", "b", "c"}})

	tests := []struct {
		index int
		want  Result
	}{
		{0, Str("a")},
		{2, Str("c")},
		{-1, Str("c")},
		{-3, Str("a")},
		{3, Error(msgBadRange)},
		{-4, Error(msgBadRange)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, run(t, e, LIndex{Key: "l", Index: tt.index}), "index %d", tt.index)
	}

	assert.Equal(t, Nil(), run(t, e, LIndex{Key: "missing", Index: 0}))
}

func TestLSet(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, Error(msgNoList), run(t, e, LSet{Key: "l", Index: 0, Value: "x"}))

	run(t, e, RPush{Key: "l", Values: []string{"a", "b", "c"}})
	assert.Equal(t, OK(), run(t, e, LSet{Key: "l", Index: -1, Value: "z"}))
	assert.Equal(t, Error(msgBadRange), run(t, e, LSet{Key: "l", Index: 5, Value: "x"}))
	assert.Equal(t, []string{"a", "b", "z"}, run(t, e, LRange{Key: "l", Start: 0, Stop: -1}).Multi)
}

func TestLRangeClamping(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"a", "b", "c", "d"}})

	tests := []struct {
		start, stop int
		want        []string
	}{
		{0, -1, []string{"a", "b", "c", "d"}},
		{-100, 1, []string{"a", "b"}},
		{1, 100, []string{"b", "c", "d"}},
		{-2, -1, []string{"c", "d"}},
		{3, 1, []string{}},
		{10, 20, []string{}},
	}
	for _, tt := range tests {
		res := run(t, e, LRange{Key: "l", Start: tt.start, Stop: tt.stop})
		require.Equal(t, KindMulti, res.Kind)
		assert.Equal(t, tt.want, res.Multi, "range %d..%d", tt.start, tt.stop)
	}

	assert.Equal(t, []string{}, run(t, e, LRange{Key: "missing", Start: 0, Stop: -1}).Multi)
}

func TestLTrim(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"a", "b", "c", "d"}})

	assert.Equal(t, OK(), run(t, e, LTrim{Key: "l", Start: 1, Stop: -2}))
	assert.Equal(t, []string{"b", "c"}, run(t, e, LRange{Key: "l", Start: 0, Stop: -1}).Multi)

	// an empty range clears the key
	assert.Equal(t, OK(), run(t, e, LTrim{Key: "l", Start: 5, Stop: 10}))
	assert.Equal(t, Int(0), run(t, e, Exists{Keys: []string{"l"}}))

	assert.Equal(t, OK(), run(t, e, LTrim{Key: "missing", Start: 0, Stop: 1}))
}

func TestLRem(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"x", "a", "x", "b", "x"}})

	assert.Equal(t, Int(1), run(t, e, LRem{Key: "l", Count: -1, Value: "x"}))
	assert.Equal(t, []string{"x", "a", "x", "b"}, run(t, e, LRange{Key: "l", Start: 0, Stop: -1}).Multi)

	assert.Equal(t, Int(2), run(t, e, LRem{Key: "l", Count: 0, Value: "x"}))
	assert.Equal(t, []string{"a", "b"}, run(t, e, LRange{Key: "l", Start: 0, Stop: -1}).Multi)
}

func TestRPopLPush(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "src", Values: []string{"a", "b", "c"}})

	assert.Equal(t, Str("c"), run(t, e, RPopLPush{Source: "src", Dest: "dst"}))
	assert.Equal(t, []string{"a", "b"}, run(t, e, LRange{Key: "src", Start: 0, Stop: -1}).Multi)
	assert.Equal(t, []string{"c"}, run(t, e, LRange{Key: "dst", Start: 0, Stop: -1}).Multi)

	// moved values land on the head of the destination
	run(t, e, RPopLPush{Source: "src", Dest: "dst"})
	assert.Equal(t, []string{"b", "c"}, run(t, e, LRange{Key: "dst", Start: 0, Stop: -1}).Multi)

	// missing source creates nothing
	assert.Equal(t, Nil(), run(t, e, RPopLPush{Source: "none", Dest: "other"}))
	assert.Equal(t, Int(0), run(t, e, Exists{Keys: []string{"other"}}))
}

func TestRPopLPushRotates(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"a", "b", "c"}})

	assert.Equal(t, Str("c"), run(t, e, RPopLPush{Source: "l", Dest: "l"}))
	assert.Equal(t, []string{"c", "a", "b"}, run(t, e, LRange{Key: "l", Start: 0, Stop: -1}).Multi)

	run(t, e, Del{Keys: []string{"l"}})
	run(t, e, RPush{Key: "l", Values: []string{"only"}})
	assert.Equal(t, Str("only"), run(t, e, RPopLPush{Source: "l", Dest: "l"}))
	assert.Equal(t, Int(1), run(t, e, LLen{Key: "l"}))
}
