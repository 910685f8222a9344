package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"keygrid/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForBlocked(t *testing.T, e *Engine, key string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return e.Waiters().Waiting(key) == n }, 2*time.Second, time.Millisecond)
}

func TestBLPopImmediate(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "b", Values: []string{"x", "y"}})

	res := run(t, e, BLPop{Keys: []string{"a", "b"}, Timeout: time.Second})
	assert.Equal(t, Multi([]string{"b", "x"}), res)

	res = run(t, e, BRPop{Keys: []string{"b"}, Timeout: time.Second})
	assert.Equal(t, Multi([]string{"b", "y"}), res)
	assert.Equal(t, 0, e.Waiters().Blocked())
}

func TestBLPopWokenByPush(t *testing.T) {
	e := newTestEngine()

	done := make(chan Result, 1)
	go func() {
		done <- run(t, e, BLPop{Keys: []string{"q"}})
	}()

	waitForBlocked(t, e, "q", 1)
	run(t, e, RPush{Key: "q", Values: []string{"hello"}})

	select {
	case res := <-done:
		assert.Equal(t, Multi([]string{"q", "hello"}), res)
	case <-time.After(2 * time.Second):
		t.Fatal("BLPOP was not woken by RPUSH")
	}
	assert.Equal(t, 0, e.Waiters().Blocked())
	assert.Equal(t, Int(0), run(t, e, Exists{Keys: []string{"q"}}))
}

func TestBLPopTimeout(t *testing.T) {
	e := newTestEngine()

	start := time.Now()
	res := run(t, e, BLPop{Keys: []string{"empty"}, Timeout: 30 * time.Millisecond})
	assert.Equal(t, Nil(), res)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 0, e.Waiters().Blocked())
	assert.Equal(t, 0, e.Waiters().Keys())
}

func TestBLPopContextCancelled(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Result, 1)
	go func() { done <- e.Exec(ctx, BRPop{Keys: []string{"q"}}) }()

	waitForBlocked(t, e, "q", 1)
	cancel()

	select {
	case res := <-done:
		assert.Equal(t, Nil(), res)
	case <-time.After(2 * time.Second):
		t.Fatal("BRPOP did not return after cancel")
	}
	assert.Equal(t, 0, e.Waiters().Blocked())
}

func TestBRPopLPushWoken(t *testing.T) {
	e := newTestEngine()

	done := make(chan Result, 1)
	go func() {
		done <- run(t, e, BRPopLPush{Source: "src", Dest: "dst", Timeout: 2 * time.Second})
	}()

	waitForBlocked(t, e, "src", 1)
	run(t, e, LPush{Key: "src", Values: []string{"v"}})

	res := <-done
	assert.Equal(t, Str("v"), res)
	assert.Equal(t, []string{"v"}, run(t, e, LRange{Key: "dst", Start: 0, Stop: -1}).Multi)
	assert.Equal(t, Int(0), run(t, e, LLen{Key: "src"}))
}

// A blocked BLPOP on the destination of RPOPLPUSH is woken by the move.
func TestRPopLPushWakesDestination(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "src", Values: []string{"v"}})

	done := make(chan Result, 1)
	go func() { done <- run(t, e, BLPop{Keys: []string{"dst"}, Timeout: 2 * time.Second}) }()

	waitForBlocked(t, e, "dst", 1)
	run(t, e, RPopLPush{Source: "src", Dest: "dst"})
	assert.Equal(t, Multi([]string{"dst", "v"}), <-done)
}

func TestBlockedPoppersEachGetOneValue(t *testing.T) {
	e := newTestEngine()
	const poppers = 10

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []string
	)
	for i := 0; i < poppers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := run(t, e, BLPop{Keys: []string{"q"}, Timeout: 5 * time.Second})
			if assert.Equal(t, KindMulti, res.Kind) {
				mu.Lock()
				got = append(got, res.Multi[1])
				mu.Unlock()
			}
		}()
	}

	waitForBlocked(t, e, "q", poppers)
	want := make([]string, poppers)
	for i := range want {
		want[i] = string(rune('a' + i))
		run(t, e, RPush{Key: "q", Values: []string{want[i]}})
	}
	wg.Wait()

	assert.ElementsMatch(t, want, got)
	assert.Equal(t, 0, e.Waiters().Blocked())
}

func TestPoisonedTypeIsIsolated(t *testing.T) {
	e := newTestEngine()
	run(t, e, RPush{Key: "l", Values: []string{"a"}})
	run(t, e, Set{Key: "s", Value: "v"})

	_, err := e.Store().Lists.Mutate("l", func(*store.List) store.Action { panic("boom") })
	require.ErrorIs(t, err, store.ErrPoisoned)

	res := run(t, e, LPush{Key: "l", Values: []string{"b"}})
	require.True(t, res.IsError())
	assert.True(t, strings.HasPrefix(res.Str, "internal error executing 'LPUSH'"))
	assert.True(t, run(t, e, LLen{Key: "l"}).IsError())

	// other types keep working
	assert.Equal(t, Str("v"), run(t, e, Get{Key: "s"}))
	assert.Equal(t, Int(1), run(t, e, SAdd{Key: "set", Members: []string{"m"}}))

	// keyspace-wide commands report the fault
	assert.True(t, run(t, e, Keys{Pattern: "*"}).IsError())
}

type panicOp struct{}

func (panicOp) Name() string { return "PANIC" }

func (panicOp) exec(context.Context, *Engine) Result { panic("bad op") }

func TestExecRecoversPanic(t *testing.T) {
	e := newTestEngine()
	res := run(t, e, panicOp{})
	assert.Equal(t, Error("internal error executing 'PANIC'"), res)
}
