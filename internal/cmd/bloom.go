package cmd

import (
	"strconv"

	"keygrid/internal/engine"
)

func registerBloom(r *Registry) {
	r.Register(&Command{Name: "BF.RESERVE", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		rate, err := strconv.ParseFloat(a[1], 64)
		if err != nil {
			return nil, errorf("bad error rate")
		}
		capacity, err := strconv.ParseUint(a[2], 10, 0)
		if err != nil || capacity == 0 {
			return nil, errorf("bad capacity")
		}
		if rate <= 0 || rate >= 1 {
			return nil, errorf("error rate should be between 0 and 1")
		}
		return engine.BFReserve{Key: a[0], ErrorRate: rate, Capacity: uint(capacity)}, nil
	}})
	r.Register(&Command{Name: "BF.ADD", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		return engine.BFAdd{Key: a[0], Items: a[1:]}, nil
	}})
	r.Register(&Command{Name: "BF.MADD", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.BFAdd{Key: a[0], Items: a[1:], Multi: true}, nil
	}})
	r.Register(&Command{Name: "BF.EXISTS", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.BFExists{Key: a[0], Items: a[1:]}, nil
	}})
	r.Register(&Command{Name: "BF.MEXISTS", Arity: -3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.BFExists{Key: a[0], Items: a[1:], Multi: true}, nil
	}})
}
