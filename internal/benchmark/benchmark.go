// Package benchmark drives load against a server and reports throughput and
// latency percentiles per command.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCommands are benchmarked when none are requested.
var DefaultCommands = []string{"PING", "SET", "GET", "INCR", "LPUSH", "RPUSH", "LPOP", "RPOP", "SADD", "HSET", "SPOP", "ZADD", "ZPOPMIN", "LRANGE", "MSET", "BF.ADD"}

type Config struct {
	Host        string
	Port        int
	Requests    int
	Concurrency int
	Pipeline    int
	Timeout     time.Duration
	Commands    []string
	DataSize    int
	KeySpace    int
	RandomData  bool
	Quiet       bool
	CSV         bool
	LatencyHist bool
}

func (c Config) normalized() Config {
	if c.Requests <= 0 {
		c.Requests = 10000
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 50
	}
	if c.Pipeline <= 0 {
		c.Pipeline = 1
	}
	if c.DataSize <= 0 {
		c.DataSize = 3
	}
	if c.KeySpace <= 0 {
		c.KeySpace = 10000
	}
	if len(c.Commands) == 0 {
		c.Commands = DefaultCommands
	}
	return c
}

type Result struct {
	Command    string
	Requests   int64
	Duration   time.Duration
	Latencies  []time.Duration
	Errors     int64
	Throughput float64
	P50Latency time.Duration
	P95Latency time.Duration
	P99Latency time.Duration
}

// Run benchmarks every configured command in turn.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	cfg = cfg.normalized()
	client := redis.NewClient(&redis.Options{
		Addr:            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Protocol:        2,
		DisableIdentity: true,
		DialTimeout:     cfg.Timeout,
		PoolSize:        cfg.Concurrency,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("could not connect: %w", err)
	}

	results := make([]Result, 0, len(cfg.Commands))
	for _, command := range cfg.Commands {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, runCommand(ctx, client, cfg, strings.ToUpper(command)))
	}
	return results, nil
}

func runCommand(ctx context.Context, client *redis.Client, cfg Config, command string) Result {
	res := Result{
		Command:   command,
		Requests:  int64(cfg.Requests),
		Latencies: make([]time.Duration, 0, cfg.Requests),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	perWorker, extra := cfg.Requests/cfg.Concurrency, cfg.Requests%cfg.Concurrency
	start := time.Now()
	next := 0
	for w := 0; w < cfg.Concurrency; w++ {
		n := perWorker
		if w < extra {
			n++
		}
		if n == 0 {
			continue
		}
		from := next
		next += n

		wg.Add(1)
		go func() {
			defer wg.Done()
			lat, errs := runWorker(ctx, client, cfg, command, from, n)
			mu.Lock()
			res.Latencies = append(res.Latencies, lat...)
			res.Errors += errs
			mu.Unlock()
		}()
	}
	wg.Wait()

	res.Duration = time.Since(start)
	if res.Duration > 0 {
		res.Throughput = float64(res.Requests) / res.Duration.Seconds()
	}
	sort.Slice(res.Latencies, func(i, j int) bool { return res.Latencies[i] < res.Latencies[j] })
	res.P50Latency = percentile(res.Latencies, 50)
	res.P95Latency = percentile(res.Latencies, 95)
	res.P99Latency = percentile(res.Latencies, 99)
	return res
}

// runWorker issues requests [from, from+n) and returns per-request latencies.
// Pipelined requests share the batch latency evenly.
func runWorker(ctx context.Context, client *redis.Client, cfg Config, command string, from, n int) ([]time.Duration, int64) {
	lat := make([]time.Duration, 0, n)
	var errs int64

	for i := 0; i < n; i += cfg.Pipeline {
		batch := cfg.Pipeline
		if i+batch > n {
			batch = n - i
		}

		start := time.Now()
		if batch == 1 {
			if err := client.Do(ctx, buildArgs(command, cfg, from+i)...).Err(); failed(err) {
				errs++
			}
		} else {
			pipe := client.Pipeline()
			cmds := make([]*redis.Cmd, batch)
			for j := range cmds {
				cmds[j] = pipe.Do(ctx, buildArgs(command, cfg, from+i+j)...)
			}
			_, _ = pipe.Exec(ctx)
			for _, c := range cmds {
				if failed(c.Err()) {
					errs++
				}
			}
		}
		each := time.Since(start) / time.Duration(batch)
		for j := 0; j < batch; j++ {
			lat = append(lat, each)
		}
	}
	return lat, errs
}

// failed treats a nil reply (popping an empty list) as success.
func failed(err error) bool {
	return err != nil && !errors.Is(err, redis.Nil)
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := len(sorted) * p / 100
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func value(cfg Config) string {
	if !cfg.RandomData {
		return strings.Repeat("x", cfg.DataSize)
	}
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, cfg.DataSize)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}

func buildArgs(command string, cfg Config, id int) []interface{} {
	slot := id % cfg.KeySpace
	key := func(prefix string) string { return prefix + ":" + strconv.Itoa(slot) }

	switch command {
	case "SET":
		return []interface{}{"SET", key("key"), value(cfg)}
	case "GET":
		return []interface{}{"GET", key("key")}
	case "INCR":
		return []interface{}{"INCR", key("counter")}
	case "LPUSH", "RPUSH":
		return []interface{}{command, key("list"), value(cfg)}
	case "LPOP", "RPOP":
		return []interface{}{command, key("list")}
	case "LRANGE":
		return []interface{}{"LRANGE", key("list"), "0", "99"}
	case "SADD":
		return []interface{}{"SADD", key("set"), value(cfg) + strconv.Itoa(id)}
	case "SPOP":
		return []interface{}{"SPOP", key("set")}
	case "HSET":
		return []interface{}{"HSET", key("hash"), "field:" + strconv.Itoa(id%1000), value(cfg)}
	case "ZADD":
		return []interface{}{"ZADD", key("zset"), strconv.Itoa(id % 1000), value(cfg) + strconv.Itoa(id)}
	case "ZPOPMIN":
		return []interface{}{"ZPOPMIN", key("zset")}
	case "MSET":
		args := []interface{}{"MSET"}
		for j := 0; j < 10; j++ {
			args = append(args, fmt.Sprintf("mset:%d:%d", slot, j), value(cfg))
		}
		return args
	case "BF.ADD":
		return []interface{}{"BF.ADD", key("bloom"), value(cfg) + strconv.Itoa(id)}
	default:
		return []interface{}{"PING"}
	}
}

// Print writes results as text or CSV.
func Print(w io.Writer, results []Result, cfg Config) {
	if cfg.CSV {
		printCSV(w, results)
		return
	}
	if !cfg.Quiet {
		fmt.Fprintf(w, "\nBenchmark Results:\n=================\n")
	}
	for _, r := range results {
		if cfg.Quiet {
			fmt.Fprintf(w, "%s: %.2f requests per second, p50=%s\n", r.Command, r.Throughput, formatDuration(r.P50Latency))
			continue
		}
		fmt.Fprintf(w, "%s: %.2f requests per second\n", r.Command, r.Throughput)
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(r.Duration))
		fmt.Fprintf(w, "  Requests: %d\n", r.Requests)
		fmt.Fprintf(w, "  Errors: %d\n", r.Errors)
		fmt.Fprintf(w, "  Latency percentiles:\n")
		fmt.Fprintf(w, "    p50: %s\n", formatDuration(r.P50Latency))
		fmt.Fprintf(w, "    p95: %s\n", formatDuration(r.P95Latency))
		fmt.Fprintf(w, "    p99: %s\n", formatDuration(r.P99Latency))
		if cfg.LatencyHist {
			printHistogram(w, r.Latencies)
		}
		fmt.Fprintln(w)
	}
	if !cfg.Quiet {
		printSummary(w, results)
	}
}

func printCSV(w io.Writer, results []Result) {
	fmt.Fprintf(w, "Command,Requests,Errors,Duration,Throughput,P50,P95,P99\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%s,%.2f,%s,%s,%s\n",
			r.Command, r.Requests, r.Errors, formatDuration(r.Duration), r.Throughput,
			formatDuration(r.P50Latency), formatDuration(r.P95Latency), formatDuration(r.P99Latency))
	}
}

var histogramBuckets = []time.Duration{
	10 * time.Microsecond,
	100 * time.Microsecond,
	time.Millisecond,
	10 * time.Millisecond,
	100 * time.Millisecond,
	time.Second,
}

func printHistogram(w io.Writer, sorted []time.Duration) {
	if len(sorted) == 0 {
		return
	}
	fmt.Fprintf(w, "  Latency histogram:\n")
	for _, bucket := range histogramBuckets {
		n := sort.Search(len(sorted), func(i int) bool { return sorted[i] > bucket })
		fmt.Fprintf(w, "    <=%s: %.1f%%\n", formatDuration(bucket), float64(n)/float64(len(sorted))*100)
	}
}

func printSummary(w io.Writer, results []Result) {
	if len(results) == 0 {
		return
	}
	var requests, errs int64
	var throughput float64
	for _, r := range results {
		requests += r.Requests
		errs += r.Errors
		throughput += r.Throughput
	}
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Total requests: %d\n", requests)
	fmt.Fprintf(w, "  Total errors: %d\n", errs)
	if requests > 0 {
		fmt.Fprintf(w, "  Error rate: %.2f%%\n", float64(errs)/float64(requests)*100)
	}
	fmt.Fprintf(w, "  Average throughput: %.2f requests/second\n", throughput/float64(len(results)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%d ns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.3f µs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.3f ms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3f s", d.Seconds())
	}
}
