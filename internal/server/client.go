package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"keygrid/internal/cmd"
	"keygrid/internal/engine"
	"keygrid/internal/logger"
	"keygrid/internal/resp"

	"github.com/sirupsen/logrus"
)

// client is one connection. Only its own goroutine touches the reader and
// writer, except for the disconnect watcher during a blocking command.
type client struct {
	conn   *connectionTracker
	reader *bufio.Reader
	writer *bufio.Writer
	server *Server
}

func newClient(conn *connectionTracker, s *Server) *client {
	return &client{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, s.cfg.ReadBuffer),
		writer: bufio.NewWriterSize(conn, s.cfg.WriteBuffer),
		server: s,
	}
}

func (c *client) log() *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"conn":   c.conn.id,
		"remote": c.conn.RemoteAddr().String(),
	})
}

// serve runs requests until the peer leaves, sends QUIT, breaks the protocol
// or ctx ends.
func (c *client) serve(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.log().WithField("panic", r).Error("panic in connection handler")
		}
		_ = c.conn.Close()
		c.log().Debug("connection closed")
	}()

	for {
		request, err := resp.ReadCommand(c.reader, c.server.cfg.MaxArgs)
		if err != nil {
			if errors.Is(err, resp.ErrEmptyCommand) {
				continue
			}
			if !isNetworkError(err) {
				c.log().WithField("error", err).Debug("protocol error")
				_ = resp.Write(c.writer, resp.Err("ERR Protocol error: "+err.Error()))
				_ = c.writer.Flush()
			}
			return
		}

		quit, err := c.execute(ctx, request)
		if err != nil {
			return
		}
		// Replies to a pipeline are flushed together once the input runs dry.
		if quit || c.reader.Buffered() == 0 {
			if err := c.writer.Flush(); err != nil {
				return
			}
		}
		if quit || ctx.Err() != nil {
			return
		}
	}
}

// execute runs one request and buffers its reply. quit reports a QUIT.
func (c *client) execute(ctx context.Context, request []string) (quit bool, err error) {
	op, command, err := c.server.registry.Translate(request)
	if err != nil {
		var ce *cmd.CommandError
		msg := "ERR " + err.Error()
		if errors.As(err, &ce) {
			msg = ce.Message
		}
		if command != nil {
			c.server.stats.RecordCommand(command.Name, 0, true)
		}
		return false, resp.Write(c.writer, resp.Err(msg))
	}

	start := time.Now()
	var res engine.Result
	if command.Blocking {
		res, err = c.executeBlocking(ctx, op)
		if err != nil {
			return false, err
		}
	} else {
		res = c.server.engine.Exec(ctx, op)
	}
	c.server.stats.RecordCommand(command.Name, time.Since(start), res.Kind == engine.KindError)

	if err := resp.Write(c.writer, cmd.ToValue(res, command)); err != nil {
		return false, err
	}
	return command.Name == "QUIT", nil
}

// executeBlocking runs a command that may wait for data. While it waits, a
// watcher peeks at the connection and cancels the wait if the peer goes away.
func (c *client) executeBlocking(ctx context.Context, op engine.Operation) (engine.Result, error) {
	// earlier pipelined replies must reach the client before it waits
	if err := c.writer.Flush(); err != nil {
		return engine.Result{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.reader.Peek(1); err != nil && !isTimeout(err) {
			c.log().Debug("peer disconnected while blocked")
			cancel()
		}
	}()

	res := c.server.engine.Exec(ctx, op)

	// wake the watcher and hand the reader back
	_ = c.conn.SetReadDeadline(time.Now())
	<-done
	_ = c.conn.SetReadDeadline(time.Time{})
	return res, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isNetworkError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var ne net.Error
	var oe *net.OpError
	return errors.As(err, &ne) || errors.As(err, &oe)
}
