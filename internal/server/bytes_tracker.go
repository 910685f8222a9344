package server

import (
	"net"
	"sync/atomic"

	"keygrid/internal/stats"
)

var nextConnectionID atomic.Uint64

// connectionTracker counts the bytes moved over a connection.
type connectionTracker struct {
	net.Conn
	stats *stats.Stats
	id    uint64
}

func newConnectionTracker(conn net.Conn, st *stats.Stats) *connectionTracker {
	return &connectionTracker{
		Conn:  conn,
		stats: st,
		id:    nextConnectionID.Add(1),
	}
}

func (ct *connectionTracker) Read(p []byte) (n int, err error) {
	n, err = ct.Conn.Read(p)
	if n > 0 {
		ct.stats.AddNetInput(int64(n))
	}
	return n, err
}

func (ct *connectionTracker) Write(p []byte) (n int, err error) {
	n, err = ct.Conn.Write(p)
	if n > 0 {
		ct.stats.AddNetOutput(int64(n))
	}
	return n, err
}
