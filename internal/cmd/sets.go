package cmd

import (
	"keygrid/internal/engine"
)

func registerSets(r *Registry) {
	r.Register(&Command{Name: "SADD", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.SAdd{Key: a[0], Members: a[1:]}, nil
	}})
	r.Register(&Command{Name: "SREM", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.SRem{Key: a[0], Members: a[1:]}, nil
	}})
	r.Register(&Command{Name: "SISMEMBER", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.SIsMember{Key: a[0], Member: a[1]}, nil
	}})
	r.Register(&Command{Name: "SMEMBERS", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.SMembers{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "SCARD", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.SCard{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "SPOP", Arity: -2, Parse: func(a []string) (engine.Operation, error) {
		n, has, err := optionalCount(a[1:])
		if err != nil {
			return nil, err
		}
		if has && n < 0 {
			return nil, errorf("value is out of range, must be positive")
		}
		return engine.SPop{Key: a[0], Count: n, HasCount: has}, nil
	}})
	r.Register(&Command{Name: "SRANDMEMBER", Arity: -2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		n, has, err := optionalCount(a[1:])
		if err != nil {
			return nil, err
		}
		return engine.SRandMember{Key: a[0], Count: n, HasCount: has}, nil
	}})
	r.Register(&Command{Name: "SMOVE", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		return engine.SMove{Source: a[0], Dest: a[1], Member: a[2]}, nil
	}})

	algebra := []struct {
		name string
		op   engine.SetOp
	}{
		{"SUNION", engine.SetUnion},
		{"SINTER", engine.SetInter},
		{"SDIFF", engine.SetDiff},
	}
	for _, al := range algebra {
		op := al.op
		r.Register(&Command{Name: al.name, Arity: -2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
			return engine.SetAlgebra{Op: op, Keys: a}, nil
		}})
		r.Register(&Command{Name: al.name + "STORE", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
			return engine.SetAlgebra{Op: op, Keys: a[1:], Store: true, Dest: a[0]}, nil
		}})
	}
}
