package cmd

import (
	"keygrid/internal/engine"
)

func registerLists(r *Registry) {
	r.Register(&Command{Name: "LPUSH", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.LPush{Key: a[0], Values: a[1:]}, nil
	}})
	r.Register(&Command{Name: "RPUSH", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.RPush{Key: a[0], Values: a[1:]}, nil
	}})
	r.Register(&Command{Name: "LPUSHX", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.LPushX{Key: a[0], Values: a[1:]}, nil
	}})
	r.Register(&Command{Name: "RPUSHX", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.RPushX{Key: a[0], Values: a[1:]}, nil
	}})
	r.Register(&Command{Name: "LPOP", Arity: 2, Parse: func(a []string) (engine.Operation, error) {
		return engine.LPop{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "RPOP", Arity: 2, Parse: func(a []string) (engine.Operation, error) {
		return engine.RPop{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "LLEN", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.LLen{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "LINDEX", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		i, err := parseInt(a[1])
		if err != nil {
			return nil, err
		}
		return engine.LIndex{Key: a[0], Index: i}, nil
	}})
	r.Register(&Command{Name: "LSET", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		i, err := parseInt(a[1])
		if err != nil {
			return nil, err
		}
		return engine.LSet{Key: a[0], Index: i, Value: a[2]}, nil
	}})
	r.Register(&Command{Name: "LRANGE", Arity: 4, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		start, stop, err := startStop(a[1], a[2])
		if err != nil {
			return nil, err
		}
		return engine.LRange{Key: a[0], Start: start, Stop: stop}, nil
	}})
	r.Register(&Command{Name: "LTRIM", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		start, stop, err := startStop(a[1], a[2])
		if err != nil {
			return nil, err
		}
		return engine.LTrim{Key: a[0], Start: start, Stop: stop}, nil
	}})
	r.Register(&Command{Name: "LREM", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		n, err := parseInt(a[1])
		if err != nil {
			return nil, err
		}
		return engine.LRem{Key: a[0], Count: n, Value: a[2]}, nil
	}})
	r.Register(&Command{Name: "RPOPLPUSH", Arity: 3, Parse: func(a []string) (engine.Operation, error) {
		return engine.RPopLPush{Source: a[0], Dest: a[1]}, nil
	}})
	r.Register(&Command{Name: "BLPOP", Arity: -3, Blocking: true, NullArray: true, Parse: func(a []string) (engine.Operation, error) {
		keys, timeout, err := keysAndTimeout(a)
		if err != nil {
			return nil, err
		}
		return engine.BLPop{Keys: keys, Timeout: timeout}, nil
	}})
	r.Register(&Command{Name: "BRPOP", Arity: -3, Blocking: true, NullArray: true, Parse: func(a []string) (engine.Operation, error) {
		keys, timeout, err := keysAndTimeout(a)
		if err != nil {
			return nil, err
		}
		return engine.BRPop{Keys: keys, Timeout: timeout}, nil
	}})
	// BRPOPLPUSH replies with a bulk string, so a timeout stays a null bulk.
	r.Register(&Command{Name: "BRPOPLPUSH", Arity: 4, Blocking: true, Parse: func(a []string) (engine.Operation, error) {
		timeout, err := parseTimeout(a[2])
		if err != nil {
			return nil, err
		}
		return engine.BRPopLPush{Source: a[0], Dest: a[1], Timeout: timeout}, nil
	}})
}

func startStop(a, b string) (int, int, error) {
	start, err := parseInt(a)
	if err != nil {
		return 0, 0, err
	}
	stop, err := parseInt(b)
	if err != nil {
		return 0, 0, err
	}
	return start, stop, nil
}
