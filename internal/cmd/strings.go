package cmd

import (
	"strings"

	"keygrid/internal/engine"
)

func registerStrings(r *Registry) {
	r.Register(&Command{Name: "GET", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.Get{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "SET", Arity: -3, Parse: parseSet})
	r.Register(&Command{Name: "SETNX", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		return engine.SetNX{Key: a[0], Value: a[1]}, nil
	}})
	r.Register(&Command{Name: "GETSET", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		return engine.GetSet{Key: a[0], Value: a[1]}, nil
	}})
	r.Register(&Command{Name: "MGET", Arity: -2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.MGet{Keys: a}, nil
	}})
	r.Register(&Command{Name: "MSET", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		if err := pairs(a); err != nil {
			return nil, errorf("wrong number of arguments for 'mset' command")
		}
		return engine.MSet{Pairs: a}, nil
	}})
	r.Register(&Command{Name: "APPEND", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		return engine.Append{Key: a[0], Value: a[1]}, nil
	}})
	r.Register(&Command{Name: "STRLEN", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.StrLen{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "INCR", Arity: 2, Parse: func(a []string) (engine.Operation, error) {
		return engine.IncrBy{Cmd: "INCR", Key: a[0], Delta: 1}, nil
	}})
	r.Register(&Command{Name: "DECR", Arity: 2, Parse: func(a []string) (engine.Operation, error) {
		return engine.IncrBy{Cmd: "DECR", Key: a[0], Delta: -1}, nil
	}})
	r.Register(&Command{Name: "INCRBY", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		n, err := parseInt64(a[1])
		if err != nil {
			return nil, err
		}
		return engine.IncrBy{Cmd: "INCRBY", Key: a[0], Delta: n}, nil
	}})
	r.Register(&Command{Name: "DECRBY", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		n, err := parseInt64(a[1])
		if err != nil {
			return nil, err
		}
		if n == -n && n != 0 {
			// -MinInt64 does not exist
			return nil, ErrNotInteger
		}
		return engine.IncrBy{Cmd: "DECRBY", Key: a[0], Delta: -n}, nil
	}})
}

// parseSet handles SET key value [NX|XX].
func parseSet(a []string) (engine.Operation, error) {
	op := engine.Set{Key: a[0], Value: a[1]}
	for _, opt := range a[2:] {
		switch strings.ToUpper(opt) {
		case "NX":
			if op.Mode == engine.SetIfPresent {
				return nil, ErrSyntax
			}
			op.Mode = engine.SetIfAbsent
		case "XX":
			if op.Mode == engine.SetIfAbsent {
				return nil, ErrSyntax
			}
			op.Mode = engine.SetIfPresent
		default:
			return nil, ErrSyntax
		}
	}
	return op, nil
}
