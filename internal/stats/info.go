package stats

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"keygrid/internal/logger"
)

var sectionOrder = []string{"server", "clients", "cpu", "memory", "persistence", "stats", "commandstats", "keyspace"}

// Info renders the INFO text. An empty section or "all"/"default" renders
// every section; an unknown section renders nothing.
func (s *Stats) Info(section string) string {
	section = strings.ToLower(section)
	var out strings.Builder
	switch section {
	case "", "all", "default", "everything":
		for i, name := range sectionOrder {
			if i > 0 {
				out.WriteString("\r\n")
			}
			s.writeSection(&out, name)
		}
	default:
		if !s.writeSection(&out, section) {
			return ""
		}
	}
	return out.String()
}

func (s *Stats) writeSection(b *strings.Builder, name string) bool {
	switch name {
	case "server":
		s.server(b)
	case "clients":
		s.clients(b)
	case "cpu":
		cpu(b)
	case "memory":
		memory(b)
	case "persistence":
		s.persistence(b)
	case "stats":
		s.stats(b)
	case "commandstats":
		s.commandStats(b)
	case "keyspace":
		s.keyspace(b)
	default:
		return false
	}
	return true
}

func field(b *strings.Builder, key string, format string, v any) {
	b.WriteString(key)
	b.WriteByte(':')
	fmt.Fprintf(b, format, v)
	b.WriteString("\r\n")
}

func (s *Stats) server(b *strings.Builder) {
	uptime := time.Since(s.start)
	b.WriteString("# Server\r\n")
	field(b, "keygrid_version", "%s", Version)
	field(b, "keygrid_git_sha1", "%s", Commit)
	field(b, "keygrid_build_date", "%s", BuildDate)
	field(b, "os", "%s", runtime.GOOS+" "+runtime.GOARCH)
	field(b, "go_version", "%s", runtime.Version())
	field(b, "process_id", "%d", os.Getpid())
	field(b, "tcp_port", "%d", s.port)
	field(b, "uptime_in_seconds", "%d", int64(uptime.Seconds()))
	field(b, "uptime_in_days", "%d", int64(uptime.Hours()/24))
}

func (s *Stats) clients(b *strings.Builder) {
	b.WriteString("# Clients\r\n")
	field(b, "connected_clients", "%d", s.Connected())
	field(b, "maxclients", "%d", s.maxConn)
	field(b, "blocked_clients", "%d", s.Blocked())
}

func cpu(b *strings.Builder) {
	var self, children syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &self); err != nil {
		logger.Warnf("getrusage: %v", err)
	}
	if err := syscall.Getrusage(syscall.RUSAGE_CHILDREN, &children); err != nil {
		logger.Warnf("getrusage children: %v", err)
	}
	seconds := func(tv syscall.Timeval) float64 {
		return float64(tv.Sec) + float64(tv.Usec)/1e6
	}
	b.WriteString("# CPU\r\n")
	field(b, "used_cpu_sys", "%.6f", seconds(self.Stime))
	field(b, "used_cpu_user", "%.6f", seconds(self.Utime))
	field(b, "used_cpu_sys_children", "%.6f", seconds(children.Stime))
	field(b, "used_cpu_user_children", "%.6f", seconds(children.Utime))
}

func memory(b *strings.Builder) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	b.WriteString("# Memory\r\n")
	field(b, "used_memory", "%d", m.Alloc)
	field(b, "used_memory_sys", "%d", m.Sys)
	field(b, "heap_objects", "%d", m.HeapObjects)
	field(b, "num_gc", "%d", m.NumGC)
	field(b, "goroutines", "%d", runtime.NumGoroutine())
}

func (s *Stats) persistence(b *strings.Builder) {
	var p PersistenceInfo
	if s.src.Persistence != nil {
		p = s.src.Persistence()
	}
	b.WriteString("# Persistence\r\n")
	field(b, "rdb_enabled", "%d", boolInt(p.Enabled))
	field(b, "rdb_changes_since_last_save", "%d", p.ChangesPending)
	field(b, "rdb_bgsave_in_progress", "%d", boolInt(p.InProgress))
	var last int64
	if !p.LastSave.IsZero() {
		last = p.LastSave.Unix()
	}
	field(b, "rdb_last_save_time", "%d", last)
	status := "ok"
	if !p.LastSaveOK {
		status = "err"
	}
	field(b, "rdb_last_bgsave_status", "%s", status)
	field(b, "rdb_last_save_duration_sec", "%.3f", p.LastSaveSeconds)
}

func (s *Stats) stats(b *strings.Builder) {
	b.WriteString("# Stats\r\n")
	field(b, "total_connections_received", "%d", s.connsReceived.Get())
	field(b, "rejected_connections", "%d", s.connsRejected.Get())
	field(b, "total_commands_processed", "%d", s.commands.Get())
	field(b, "total_error_replies", "%d", s.failures.Get())
	field(b, "total_net_input_bytes", "%d", s.netIn.Get())
	field(b, "total_net_output_bytes", "%d", s.netOut.Get())
}

func (s *Stats) commandStats(b *strings.Builder) {
	b.WriteString("# Commandstats\r\n")
	var names []string
	s.byCommand.Range(func(name string, _ *commandStat) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	for _, name := range names {
		cs, _ := s.byCommand.Load(name)
		calls, usec := cs.calls.Get(), cs.usec.Get()
		var per float64
		if calls > 0 {
			per = float64(usec) / float64(calls)
		}
		fmt.Fprintf(b, "cmdstat_%s:calls=%d,usec=%d,usec_per_call=%.2f,failed_calls=%d\r\n",
			name, calls, usec, per, cs.errors.Get())
	}
}

func (s *Stats) keyspace(b *strings.Builder) {
	counts := s.Keys()
	b.WriteString("# Keyspace\r\n")
	total := 0
	for _, typ := range keyTypes {
		total += counts[typ]
	}
	if total == 0 {
		return
	}
	fmt.Fprintf(b, "db0:keys=%d,expires=0,avg_ttl=0\r\n", total)
	for _, typ := range keyTypes {
		if n := counts[typ]; n > 0 {
			fmt.Fprintf(b, "keys_%s:%d\r\n", strings.TrimSuffix(typ, "--"), n)
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
