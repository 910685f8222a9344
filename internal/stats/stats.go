// Package stats tracks server counters for INFO and the Prometheus endpoint.
package stats

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

var Version = "0.1.0"
var Commit = "HEAD"
var BuildDate = "now"

// PersistenceInfo describes the snapshot state shown under INFO persistence.
type PersistenceInfo struct {
	Enabled         bool
	InProgress      bool
	LastSave        time.Time
	LastSaveOK      bool
	ChangesPending  int64
	LastSaveSeconds float64
}

// Sources are the live values the stats read from other components. Any of
// them may be nil.
type Sources struct {
	Keys        func() map[string]int
	Blocked     func() int
	Persistence func() PersistenceInfo
}

type commandStat struct {
	calls  *metrics.Counter
	errors *metrics.Counter
	usec   *metrics.Counter
}

// Stats is safe for concurrent use. Counters live in a private metrics.Set so
// several servers in one process (tests) do not collide.
type Stats struct {
	set     *metrics.Set
	src     Sources
	start   time.Time
	port    int
	maxConn int

	connected atomic.Int64

	connsReceived *metrics.Counter
	connsRejected *metrics.Counter
	commands      *metrics.Counter
	failures      *metrics.Counter
	netIn         *metrics.Counter
	netOut        *metrics.Counter
	latency       *metrics.Histogram

	byCommand *xsync.MapOf[string, *commandStat]
}

// keyTypes are the type names exported as keygrid_keys{type=...}.
var keyTypes = []string{"string", "list", "hash", "set", "zset", "MBbloom--"}

func New(port, maxClients int, src Sources) *Stats {
	s := &Stats{
		set:       metrics.NewSet(),
		src:       src,
		start:     time.Now(),
		port:      port,
		maxConn:   maxClients,
		byCommand: xsync.NewMapOf[string, *commandStat](),
	}
	s.connsReceived = s.set.NewCounter("keygrid_connections_received_total")
	s.connsRejected = s.set.NewCounter("keygrid_connections_rejected_total")
	s.commands = s.set.NewCounter("keygrid_commands_processed_total")
	s.failures = s.set.NewCounter("keygrid_command_errors_total")
	s.netIn = s.set.NewCounter("keygrid_net_input_bytes_total")
	s.netOut = s.set.NewCounter("keygrid_net_output_bytes_total")
	s.latency = s.set.NewHistogram("keygrid_command_duration_seconds")

	s.set.NewGauge("keygrid_connected_clients", func() float64 {
		return float64(s.connected.Load())
	})
	s.set.NewGauge("keygrid_blocked_clients", func() float64 {
		return float64(s.Blocked())
	})
	s.set.NewGauge("keygrid_uptime_seconds", func() float64 {
		return time.Since(s.start).Seconds()
	})
	for _, typ := range keyTypes {
		typ := typ
		s.set.NewGauge(fmt.Sprintf(`keygrid_keys{type=%q}`, typ), func() float64 {
			return float64(s.Keys()[typ])
		})
	}
	return s
}

func (s *Stats) ConnectionReceived() {
	s.connsReceived.Inc()
	s.connected.Add(1)
}

func (s *Stats) ConnectionClosed() { s.connected.Add(-1) }

func (s *Stats) ConnectionRejected() { s.connsRejected.Inc() }

func (s *Stats) Connected() int64 { return s.connected.Load() }

func (s *Stats) ConnectionsReceived() uint64 { return s.connsReceived.Get() }

func (s *Stats) AddNetInput(n int64) { s.netIn.Add(int(n)) }

func (s *Stats) AddNetOutput(n int64) { s.netOut.Add(int(n)) }

// RecordCommand counts one executed command. name is the registered name.
func (s *Stats) RecordCommand(name string, d time.Duration, failed bool) {
	s.commands.Inc()
	s.latency.Update(d.Seconds())

	name = strings.ToLower(name)
	cs, _ := s.byCommand.LoadOrCompute(name, func() *commandStat {
		return &commandStat{
			calls:  s.set.GetOrCreateCounter(fmt.Sprintf(`keygrid_commands_total{command=%q}`, name)),
			errors: s.set.GetOrCreateCounter(fmt.Sprintf(`keygrid_command_failures_total{command=%q}`, name)),
			usec:   s.set.GetOrCreateCounter(fmt.Sprintf(`keygrid_command_duration_microseconds_total{command=%q}`, name)),
		}
	})
	cs.calls.Inc()
	cs.usec.Add(int(d.Microseconds()))
	if failed {
		cs.errors.Inc()
		s.failures.Inc()
	}
}

func (s *Stats) CommandsProcessed() uint64 { return s.commands.Get() }

func (s *Stats) Errors() uint64 { return s.failures.Get() }

// Calls returns how often the named command ran.
func (s *Stats) Calls(name string) uint64 {
	cs, ok := s.byCommand.Load(strings.ToLower(name))
	if !ok {
		return 0
	}
	return cs.calls.Get()
}

func (s *Stats) Blocked() int {
	if s.src.Blocked == nil {
		return 0
	}
	return s.src.Blocked()
}

func (s *Stats) Keys() map[string]int {
	if s.src.Keys == nil {
		return map[string]int{}
	}
	return s.src.Keys()
}

// WritePrometheus writes every metric in Prometheus text format, followed by
// the Go runtime and process metrics.
func (s *Stats) WritePrometheus(w io.Writer) {
	s.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}
