// Package cmd maps wire-level commands onto engine operations and engine
// results back onto wire values.
package cmd

import (
	"fmt"
	"sort"
	"strings"

	"keygrid/internal/engine"
	"keygrid/internal/resp"
)

// Parser builds an operation from a command's arguments (name excluded).
type Parser func(args []string) (engine.Operation, error)

// Command represents a registered command
type Command struct {
	Name string
	// Arity counts the command name: N means exactly N words, -N at least N.
	Arity    int
	ReadOnly bool
	// Blocking commands may suspend the connection until data arrives.
	Blocking bool
	// NullArray commands encode Nil as a null array rather than a null bulk.
	NullArray bool
	Parse     Parser
}

// arityOK checks a request of n words, name included.
func (c *Command) arityOK(n int) bool {
	if c.Arity >= 0 {
		return n == c.Arity
	}
	return n >= -c.Arity
}

// CommandError is a client-facing error raised while translating a request.
// Message carries the full reply text including the error prefix.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

func errorf(format string, args ...interface{}) *CommandError {
	return &CommandError{Message: "ERR " + fmt.Sprintf(format, args...)}
}

var (
	ErrSyntax     = &CommandError{"ERR syntax error"}
	ErrNotInteger = &CommandError{"ERR value is not an integer or out of range"}
	ErrNotFloat   = &CommandError{"ERR value is not a valid float"}
	ErrMinMax     = &CommandError{"ERR min or max is not a float"}
	ErrTimeout    = &CommandError{"ERR timeout is not a float or out of range"}
	ErrNegTimeout = &CommandError{"ERR timeout is negative"}
)

// Registry holds all registered commands. It is read-only once serving
// starts.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command, 128)}
}

// Default returns a registry with every supported command.
func Default() *Registry {
	r := NewRegistry()
	registerStrings(r)
	registerKeys(r)
	registerLists(r)
	registerHashes(r)
	registerSets(r)
	registerZSets(r)
	registerBloom(r)
	registerServer(r)
	return r
}

// Register adds a command to the registry
func (r *Registry) Register(c *Command) {
	r.commands[strings.ToUpper(c.Name)] = c
}

// Get retrieves a command by name, case-insensitively.
func (r *Registry) Get(name string) (*Command, bool) {
	if c, ok := r.commands[name]; ok {
		return c, true
	}
	c, ok := r.commands[strings.ToUpper(name)]
	return c, ok
}

// List returns all registered command names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flags returns the COMMAND flags of c.
func (c *Command) Flags() []string {
	flags := []string{"write"}
	if c.ReadOnly {
		flags[0] = "readonly"
	}
	if c.Blocking {
		flags = append(flags, "blocking")
	}
	return flags
}

// Describe renders the COMMAND reply: one [name, arity, flags] entry per
// command, sorted by name.
func (r *Registry) Describe() engine.Result {
	names := r.List()
	out := make([]engine.Result, len(names))
	for i, name := range names {
		c := r.commands[name]
		out[i] = engine.Array(
			engine.Str(strings.ToLower(c.Name)),
			engine.Int(int64(c.Arity)),
			engine.Multi(c.Flags()),
		)
	}
	return engine.Array(out...)
}

// Translate resolves a request (name followed by arguments) into an
// operation. Errors are *CommandError values.
func (r *Registry) Translate(request []string) (engine.Operation, *Command, error) {
	if len(request) == 0 {
		return nil, nil, &CommandError{"ERR empty command"}
	}
	name, args := request[0], request[1:]
	c, ok := r.Get(name)
	if !ok {
		return nil, nil, errorf("unknown command '%s'", name)
	}
	if !c.arityOK(len(request)) {
		return nil, c, errorf("wrong number of arguments for '%s' command", strings.ToLower(c.Name))
	}
	op, err := c.Parse(args)
	if err != nil {
		return nil, c, err
	}
	return op, c, nil
}

// ToValue converts an engine result into the reply for c.
func ToValue(res engine.Result, c *Command) resp.Value {
	switch res.Kind {
	case engine.KindOK:
		return resp.OK()
	case engine.KindNil:
		if c != nil && c.NullArray {
			return resp.NullArray()
		}
		return resp.NullBulk()
	case engine.KindInt:
		return resp.Int(res.Int)
	case engine.KindString:
		return resp.Bulk(res.Str)
	case engine.KindStatus:
		return resp.Simple(res.Str)
	case engine.KindMulti:
		return resp.BulkArray(res.Multi)
	case engine.KindArray:
		vs := make([]resp.Value, len(res.Array))
		for i, el := range res.Array {
			vs[i] = ToValue(el, nil)
		}
		return resp.ArrayOf(vs...)
	case engine.KindError:
		return resp.Err("ERR " + res.Str)
	default:
		return resp.Err("ERR unknown result")
	}
}
