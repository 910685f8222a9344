package stats

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStats() *Stats {
	return New(6380, 100, Sources{
		Keys:    func() map[string]int { return map[string]int{"list": 2, "string": 1} },
		Blocked: func() int { return 3 },
		Persistence: func() PersistenceInfo {
			return PersistenceInfo{Enabled: true, LastSave: time.Unix(1700000000, 0), LastSaveOK: true, ChangesPending: 7}
		},
	})
}

func TestConnectionCounters(t *testing.T) {
	s := newTestStats()

	s.ConnectionReceived()
	s.ConnectionReceived()
	s.ConnectionClosed()
	s.ConnectionRejected()

	assert.Equal(t, int64(1), s.Connected())
	assert.Equal(t, uint64(2), s.ConnectionsReceived())
	assert.Contains(t, s.Info("stats"), "rejected_connections:1\r\n")
}

func TestRecordCommand(t *testing.T) {
	s := newTestStats()

	s.RecordCommand("GET", time.Millisecond, false)
	s.RecordCommand("get", time.Millisecond, true)
	s.RecordCommand("LPUSH", 2*time.Millisecond, false)

	assert.Equal(t, uint64(3), s.CommandsProcessed())
	assert.Equal(t, uint64(1), s.Errors())
	assert.Equal(t, uint64(2), s.Calls("GET"))
	assert.Equal(t, uint64(0), s.Calls("SET"))

	info := s.Info("commandstats")
	assert.Contains(t, info, "cmdstat_get:calls=2,usec=2000,usec_per_call=1000.00,failed_calls=1\r\n")
	assert.Less(t, strings.Index(info, "cmdstat_get"), strings.Index(info, "cmdstat_lpush"))
}

func TestRecordCommandConcurrent(t *testing.T) {
	s := newTestStats()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordCommand("PING", time.Microsecond, false)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(800), s.Calls("ping"))
}

func TestInfoSections(t *testing.T) {
	s := newTestStats()
	info := s.Info("")

	for _, header := range []string{"# Server", "# Clients", "# CPU", "# Memory", "# Persistence", "# Stats", "# Commandstats", "# Keyspace"} {
		assert.Contains(t, info, header)
	}
	assert.Contains(t, info, "tcp_port:6380\r\n")
	assert.Contains(t, info, "blocked_clients:3\r\n")
	assert.Contains(t, info, "maxclients:100\r\n")
	assert.Contains(t, info, "rdb_changes_since_last_save:7\r\n")
	assert.Contains(t, info, "rdb_last_save_time:1700000000\r\n")
	assert.Contains(t, info, "db0:keys=3,expires=0,avg_ttl=0\r\n")
	assert.Contains(t, info, "keys_list:2\r\n")

	// cpu and memory figures move between renders; compare the layout
	all := s.Info("ALL")
	assert.Equal(t, headers(info), headers(all))
	assert.Equal(t, s.Info("keyspace"), all[strings.Index(all, "# Keyspace"):])
}

func headers(info string) []string {
	var out []string
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, "# ") {
			out = append(out, line)
		}
	}
	return out
}

func TestInfoSingleSection(t *testing.T) {
	s := newTestStats()

	clients := s.Info("CLIENTS")
	assert.True(t, strings.HasPrefix(clients, "# Clients\r\n"))
	assert.NotContains(t, clients, "# Server")

	assert.Equal(t, "", s.Info("nonsense"))
}

func TestInfoWithoutSources(t *testing.T) {
	s := New(0, 0, Sources{})
	info := s.Info("")
	assert.Contains(t, info, "blocked_clients:0\r\n")
	assert.Contains(t, info, "rdb_enabled:0\r\n")
	assert.NotContains(t, info, "db0:")
}

func TestWritePrometheus(t *testing.T) {
	s := newTestStats()
	s.ConnectionReceived()
	s.RecordCommand("BLPOP", 10*time.Millisecond, false)

	var buf bytes.Buffer
	s.WritePrometheus(&buf)
	out := buf.String()

	require.NotEmpty(t, out)
	assert.Contains(t, out, "keygrid_connections_received_total 1")
	assert.Contains(t, out, `keygrid_commands_total{command="blpop"} 1`)
	assert.Contains(t, out, `keygrid_keys{type="list"} 2`)
	assert.Contains(t, out, "keygrid_blocked_clients 3")
	assert.Contains(t, out, "keygrid_command_duration_seconds_bucket")
}
