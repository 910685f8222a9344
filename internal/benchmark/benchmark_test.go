package benchmark

import (
	"bytes"
	"context"
	"testing"
	"time"

	"keygrid/internal/engine"
	"keygrid/internal/server"
	"keygrid/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (string, int) {
	t.Helper()
	s := server.New(server.Config{Addr: "127.0.0.1:0"}, engine.New(store.New()), nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Close() })
	return "127.0.0.1", server.PortOf(s.Addr())
}

func TestRunAllCommands(t *testing.T) {
	host, port := startServer(t)
	results, err := Run(context.Background(), Config{
		Host:        host,
		Port:        port,
		Requests:    50,
		Concurrency: 4,
		KeySpace:    10,
		Timeout:     time.Second,
	})
	require.NoError(t, err)
	require.Len(t, results, len(DefaultCommands))

	for _, r := range results {
		assert.Equal(t, int64(50), r.Requests, r.Command)
		assert.Zero(t, r.Errors, r.Command)
		assert.Len(t, r.Latencies, 50, r.Command)
		assert.LessOrEqual(t, r.P50Latency, r.P99Latency, r.Command)
		assert.Greater(t, r.Throughput, 0.0, r.Command)
	}
}

func TestRunPipelined(t *testing.T) {
	host, port := startServer(t)
	results, err := Run(context.Background(), Config{
		Host:        host,
		Port:        port,
		Requests:    103,
		Concurrency: 3,
		Pipeline:    10,
		Commands:    []string{"set", "get"},
		RandomData:  true,
		DataSize:    16,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "SET", results[0].Command)
	assert.Len(t, results[0].Latencies, 103)
	assert.Zero(t, results[1].Errors)
}

func TestRunUnreachable(t *testing.T) {
	_, err := Run(context.Background(), Config{Host: "127.0.0.1", Port: 1, Timeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestPercentile(t *testing.T) {
	assert.Zero(t, percentile(nil, 50))
	lat := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(6), percentile(lat, 50))
	assert.Equal(t, time.Duration(10), percentile(lat, 99))
}

func TestBuildArgs(t *testing.T) {
	cfg := Config{KeySpace: 5, DataSize: 2}
	assert.Equal(t, []interface{}{"SET", "key:2", "xx"}, buildArgs("SET", cfg, 7))
	assert.Equal(t, []interface{}{"LPOP", "list:0"}, buildArgs("LPOP", cfg, 5))
	assert.Len(t, buildArgs("MSET", cfg, 1), 21)
	assert.Equal(t, []interface{}{"PING"}, buildArgs("UNKNOWN", cfg, 1))
}

func TestPrint(t *testing.T) {
	results := []Result{{
		Command:    "GET",
		Requests:   10,
		Duration:   time.Millisecond,
		Throughput: 10000,
		Latencies:  []time.Duration{time.Microsecond, 50 * time.Microsecond},
		P50Latency: 50 * time.Microsecond,
	}}

	var text bytes.Buffer
	Print(&text, results, Config{LatencyHist: true})
	assert.Contains(t, text.String(), "GET: 10000.00 requests per second")
	assert.Contains(t, text.String(), "<=10.000 µs: 50.0%")
	assert.Contains(t, text.String(), "Total requests: 10")

	var csv bytes.Buffer
	Print(&csv, results, Config{CSV: true})
	assert.Contains(t, csv.String(), "Command,Requests,Errors")
	assert.Contains(t, csv.String(), "GET,10,0,1.000 ms,10000.00")

	var quiet bytes.Buffer
	Print(&quiet, results, Config{Quiet: true})
	assert.Equal(t, "GET: 10000.00 requests per second, p50=50.000 µs\n", quiet.String())
}
