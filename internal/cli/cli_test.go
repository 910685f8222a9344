package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"keygrid/internal/engine"
	"keygrid/internal/server"
	"keygrid/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"PING", []string{"PING"}},
		{"  SET  k   v ", []string{"SET", "k", "v"}},
		{`SET k "hello world"`, []string{"SET", "k", "hello world"}},
		{`SET k 'it is'`, []string{"SET", "k", "it is"}},
		{`SET k "a\nb"`, []string{"SET", "k", "a\nb"}},
		{`SET k ""`, []string{"SET", "k", ""}},
		{`SET k "say \"hi\""`, []string{"SET", "k", `say "hi"`}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SplitArgs(`SET k "open`)
	assert.Error(t, err)
	_, err = SplitArgs(`SET k 'open`)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "(nil)", Format(nil, redis.Nil, false))
	assert.Equal(t, "", Format(nil, redis.Nil, true))
	assert.Equal(t, "(error) ERR boom", Format(nil, errors.New("ERR boom"), false))
	assert.Equal(t, "OK", Format("OK", nil, false))
	assert.Equal(t, `""`, Format("", nil, false))
	assert.Equal(t, "(integer) 3", Format(int64(3), nil, false))
	assert.Equal(t, "3", Format(int64(3), nil, true))
	assert.Equal(t, "(empty array)", Format([]interface{}{}, nil, false))
	assert.Equal(t, "1) a\n2) (nil)", Format([]interface{}{"a", nil}, nil, false))
	assert.Equal(t, "a\nb", Format([]interface{}{"a", "b"}, nil, true))

	nested := Format([]interface{}{"k", []interface{}{"x", int64(1)}}, nil, false)
	assert.Equal(t, "1) k\n2) 1) x\n   2) (integer) 1", nested)
}

func TestJoinArgs(t *testing.T) {
	assert.Equal(t, `SET k "a b"`, joinArgs([]string{"SET", "k", "a b"}))
	line := joinArgs([]string{"SET", "k", ""})
	args, err := SplitArgs(line)
	require.NoError(t, err)
	assert.Equal(t, []string{"SET", "k", ""}, args)
}

func startServer(t *testing.T) Config {
	t.Helper()
	s := server.New(server.Config{Addr: "127.0.0.1:0"}, engine.New(store.New()), nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Close() })
	return Config{Host: "127.0.0.1", Port: server.PortOf(s.Addr()), Timeout: time.Second}
}

func TestExecAgainstServer(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	c := New(startServer(t), &out)
	defer c.Close()

	require.NoError(t, c.Exec(ctx, "RPUSH l a b"))
	require.NoError(t, c.Exec(ctx, "LRANGE l 0 -1"))
	require.NoError(t, c.Exec(ctx, "LINDEX l 9"))
	require.NoError(t, c.Exec(ctx, "GET missing"))

	assert.Equal(t, "(integer) 2\n1) a\n2) b\n(error) ERR Bad Range!\n(nil)\n", out.String())
}

func TestRunLines(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	c := New(startServer(t), &out)
	defer c.Close()

	script := "# seed\nSET greeting \"hello world\"\n\nGET greeting\n"
	require.NoError(t, c.RunLines(ctx, strings.NewReader(script)))
	assert.Equal(t, "OK\nhello world\n", out.String())
}

func TestExecUnbalancedQuotes(t *testing.T) {
	var out bytes.Buffer
	c := New(Config{Host: "127.0.0.1", Port: 1}, &out)
	defer c.Close()
	assert.Error(t, c.Exec(context.Background(), `GET "x`))
}
