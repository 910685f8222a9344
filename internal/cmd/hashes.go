package cmd

import (
	"keygrid/internal/engine"
)

func registerHashes(r *Registry) {
	r.Register(&Command{Name: "HSET", Arity: -4, Parse: func(a []string) (engine.Operation, error) {
		if err := pairs(a[1:]); err != nil {
			return nil, errorf("wrong number of arguments for 'hset' command")
		}
		return engine.HSet{Key: a[0], Pairs: a[1:]}, nil
	}})
	r.Register(&Command{Name: "HSETNX", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		return engine.HSetNX{Key: a[0], Field: a[1], Value: a[2]}, nil
	}})
	r.Register(&Command{Name: "HGET", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HGet{Key: a[0], Field: a[1]}, nil
	}})
	r.Register(&Command{Name: "HMGET", Arity: -3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HMGet{Key: a[0], Fields: a[1:]}, nil
	}})
	r.Register(&Command{Name: "HDEL", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.HDel{Key: a[0], Fields: a[1:]}, nil
	}})
	r.Register(&Command{Name: "HEXISTS", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HExists{Key: a[0], Field: a[1]}, nil
	}})
	r.Register(&Command{Name: "HGETALL", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HGetAll{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "HKEYS", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HKeys{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "HVALS", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HVals{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "HLEN", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HLen{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "HSTRLEN", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.HStrLen{Key: a[0], Field: a[1]}, nil
	}})
	r.Register(&Command{Name: "HINCRBY", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		n, err := parseInt64(a[2])
		if err != nil {
			return nil, err
		}
		return engine.HIncrBy{Key: a[0], Field: a[1], Delta: n}, nil
	}})
}
