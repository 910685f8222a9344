package cmd

import (
	"keygrid/internal/engine"
)

func registerKeys(r *Registry) {
	r.Register(&Command{Name: "DEL", Arity: -2, Parse: func(a []string) (engine.Operation, error) {
		return engine.Del{Keys: a}, nil
	}})
	r.Register(&Command{Name: "EXISTS", Arity: -2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.Exists{Keys: a}, nil
	}})
	r.Register(&Command{Name: "TYPE", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.Type{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "KEYS", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.Keys{Pattern: a[0]}, nil
	}})
	r.Register(&Command{Name: "RENAME", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		return engine.Rename{Source: a[0], Dest: a[1]}, nil
	}})
	r.Register(&Command{Name: "DBSIZE", Arity: 1, ReadOnly: true, Parse: func([]string) (engine.Operation, error) {
		return engine.DBSize{}, nil
	}})
	r.Register(&Command{Name: "FLUSHALL", Arity: 1, Parse: func([]string) (engine.Operation, error) {
		return engine.FlushAll{}, nil
	}})
}
