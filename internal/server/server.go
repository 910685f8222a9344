// Package server accepts RESP connections and runs their commands against
// the engine, one goroutine per connection.
package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"keygrid/internal/cmd"
	"keygrid/internal/engine"
	"keygrid/internal/logger"
	"keygrid/internal/resp"
	"keygrid/internal/stats"
)

type Config struct {
	Addr        string
	ReadBuffer  int
	WriteBuffer int
	// MaxClients caps concurrent connections; zero means no limit.
	MaxClients int
	// MaxArgs caps the number of words in one request.
	MaxArgs int
}

func (c Config) withDefaults() Config {
	if c.ReadBuffer <= 0 {
		c.ReadBuffer = 64 * 1024
	}
	if c.WriteBuffer <= 0 {
		c.WriteBuffer = 64 * 1024
	}
	if c.MaxArgs <= 0 {
		c.MaxArgs = resp.DefaultMaxArgs
	}
	return c
}

type Server struct {
	cfg      Config
	engine   *engine.Engine
	registry *cmd.Registry
	stats    *stats.Stats

	ln   net.Listener
	addr string

	// connSemaphore limits concurrent connections when MaxClients is set.
	connSemaphore chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// New builds a server around e. A nil registry means cmd.Default(); nil
// stats are created from the engine's store and waiter table. The engine's
// INFO output is served from the server's stats.
func New(cfg Config, e *engine.Engine, reg *cmd.Registry, st *stats.Stats) *Server {
	cfg = cfg.withDefaults()
	if reg == nil {
		reg = cmd.Default()
	}
	if st == nil {
		st = stats.New(PortOf(cfg.Addr), cfg.MaxClients, stats.Sources{
			Keys:    e.Store().Counts,
			Blocked: e.Waiters().Blocked,
		})
	}
	e.SetInfo(st.Info)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		engine:   e,
		registry: reg,
		stats:    st,
		ctx:      ctx,
		cancel:   cancel,
		clients:  make(map[*client]struct{}),
	}
	if cfg.MaxClients > 0 {
		s.connSemaphore = make(chan struct{}, cfg.MaxClients)
	}
	return s
}

// PortOf extracts the port of a listen address, 0 if there is none.
func PortOf(addr string) int {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		logger.Errorf("Failed to start server on %s: %v", s.cfg.Addr, err)
		return err
	}
	s.ln = ln
	s.addr = ln.Addr().String()
	logger.Infof("Server listening on %s", s.addr)

	s.wg.Add(1)
	go s.serve()
	return nil
}

func (s *Server) Addr() string { return s.addr }

func (s *Server) Stats() *stats.Stats { return s.stats }

// Close stops accepting, cancels blocked commands, closes every connection
// and waits for the handlers to return.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	logger.Info("Closing server...")
	s.cancel()

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}

	s.mu.Lock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	logger.Info("Server closed")
	return err
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			logger.Errorf("Failed to accept connection: %v", err)
			return
		}

		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			default:
				logger.Warnf("Connection limit reached, rejecting connection from %s", conn.RemoteAddr())
				s.stats.ConnectionRejected()
				_, _ = conn.Write([]byte("-ERR max number of clients reached\r\n"))
				_ = conn.Close()
				continue
			}
		}

		s.tune(conn)
		c := newClient(newConnectionTracker(conn, s.stats), s)
		if !s.track(c) {
			_ = conn.Close()
			s.release()
			return
		}
		s.stats.ConnectionReceived()
		logger.Debugf("Connection %d accepted from %s", c.conn.id, conn.RemoteAddr())

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release()
			defer s.untrack(c)
			c.serve(s.ctx)
		}()
	}
}

func (s *Server) tune(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcp.SetNoDelay(true)
	_ = tcp.SetKeepAlive(true)
	_ = tcp.SetReadBuffer(s.cfg.ReadBuffer)
	_ = tcp.SetWriteBuffer(s.cfg.WriteBuffer)
}

func (s *Server) track(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	s.stats.ConnectionClosed()
}

func (s *Server) release() {
	if s.connSemaphore != nil {
		<-s.connSemaphore
	}
}
