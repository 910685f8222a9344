// Package cli is an interactive and scriptable client for the server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/term"
)

type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
	Raw     bool
	Eval    string
	File    string
	Pipe    bool
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type CLI struct {
	cfg    Config
	client *redis.Client
	out    io.Writer
}

func New(cfg Config, out io.Writer) *CLI {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr(),
		Protocol:        2,
		DisableIdentity: true,
		DialTimeout:     cfg.Timeout,
		// blocking commands may legitimately wait longer than any read timeout
		ReadTimeout: -1,
		PoolSize:    1,
	})
	return &CLI{cfg: cfg, client: client, out: out}
}

func (c *CLI) Close() error { return c.client.Close() }

// Exec runs one command line and prints its reply.
func (c *CLI) Exec(ctx context.Context, line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	doArgs := make([]interface{}, len(args))
	for i, a := range args {
		doArgs[i] = a
	}
	v, err := c.client.Do(ctx, doArgs...).Result()
	if err != nil && !errors.Is(err, redis.Nil) && !isReplyError(err) {
		return err
	}
	fmt.Fprintln(c.out, Format(v, err, c.cfg.Raw))
	return nil
}

// RunLines executes one command per line of r, skipping blanks and # comments.
func (c *CLI) RunLines(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.Exec(ctx, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Interactive reads commands from the terminal with line editing and
// history until quit, exit or end of input.
func (c *CLI) Interactive(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return c.RunLines(ctx, os.Stdin)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return c.RunLines(ctx, os.Stdin)
	}
	defer term.Restore(fd, state)

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, c.cfg.Addr()+"> ")
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}

	// replies go through the terminal so raw mode line endings are handled
	out := c.out
	c.out = t
	defer func() { c.out = out }()

	fmt.Fprintf(t, "Connected to %s. Type 'help' for help, 'quit' to exit.\n", c.cfg.Addr())
	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(t, helpText)
			continue
		case "clear":
			fmt.Fprint(t, "\033[H\033[2J")
			continue
		}
		if err := c.Exec(ctx, line); err != nil {
			fmt.Fprintf(t, "(error) %v\n", err)
		}
	}
}

// Run picks the mode from cfg: one command from Eval or args, a file, stdin
// as a pipe, or an interactive session.
func Run(ctx context.Context, cfg Config, args []string) error {
	c := New(cfg, os.Stdout)
	defer c.Close()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to %s: %w", cfg.Addr(), err)
	}

	switch {
	case cfg.Eval != "":
		return c.Exec(ctx, cfg.Eval)
	case len(args) > 0:
		return c.Exec(ctx, joinArgs(args))
	case cfg.File != "":
		f, err := os.Open(cfg.File)
		if err != nil {
			return err
		}
		defer f.Close()
		return c.RunLines(ctx, f)
	case cfg.Pipe:
		return c.RunLines(ctx, os.Stdin)
	default:
		return c.Interactive(ctx)
	}
}

func isReplyError(err error) bool {
	var re redis.Error
	return errors.As(err, &re)
}

// joinArgs turns shell arguments back into one line, quoting where needed.
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}

const helpText = `Commands are sent to the server as typed, for example:
  SET key value            LPUSH list a b c         BLPOP list 5
  HSET hash field value    SADD set member          ZADD zset 1.5 member
  BF.ADD filter item       INFO [section]           COMMAND
Quote arguments containing spaces: SET greeting "hello world"
Local commands:
  help    show this text
  clear   clear the screen
  quit    leave (also exit or Ctrl-D)
`
