package cmd

import (
	"keygrid/internal/engine"
	"keygrid/internal/store"
)

func registerZSets(r *Registry) {
	r.Register(&Command{Name: "ZADD", Arity: -4, Parse: parseZAdd})
	r.Register(&Command{Name: "ZREM", Arity: -3, Parse: func(a []string) (engine.Operation, error) {
		return engine.ZRem{Key: a[0], Members: a[1:]}, nil
	}})
	r.Register(&Command{Name: "ZCARD", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.ZCard{Key: a[0]}, nil
	}})
	r.Register(&Command{Name: "ZSCORE", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.ZScore{Key: a[0], Member: a[1]}, nil
	}})
	r.Register(&Command{Name: "ZINCRBY", Arity: 4, Parse: func(a []string) (engine.Operation, error) {
		d, err := parseFloat(a[1])
		if err != nil {
			return nil, err
		}
		return engine.ZIncrBy{Key: a[0], Delta: d, Member: a[2]}, nil
	}})
	r.Register(&Command{Name: "ZRANK", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.ZRank{Key: a[0], Member: a[1]}, nil
	}})
	r.Register(&Command{Name: "ZREVRANK", Arity: 3, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.ZRank{Key: a[0], Member: a[1], Reverse: true}, nil
	}})
	r.Register(&Command{Name: "ZRANGE", Arity: -4, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return parseZRange(a, false)
	}})
	r.Register(&Command{Name: "ZREVRANGE", Arity: -4, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return parseZRange(a, true)
	}})
	r.Register(&Command{Name: "ZRANGEBYSCORE", Arity: -4, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		min, max, err := bounds(a[1], a[2])
		if err != nil {
			return nil, err
		}
		ws, err := withScores(a[3:])
		if err != nil {
			return nil, err
		}
		return engine.ZRangeByScore{Key: a[0], Min: min, Max: max, WithScores: ws}, nil
	}})
	r.Register(&Command{Name: "ZCOUNT", Arity: 4, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		min, max, err := bounds(a[1], a[2])
		if err != nil {
			return nil, err
		}
		return engine.ZCount{Key: a[0], Min: min, Max: max}, nil
	}})
	r.Register(&Command{Name: "ZPOPMIN", Arity: -2, Parse: func(a []string) (engine.Operation, error) {
		return parseZPop(a, false)
	}})
	r.Register(&Command{Name: "ZPOPMAX", Arity: -2, Parse: func(a []string) (engine.Operation, error) {
		return parseZPop(a, true)
	}})
}

// parseZAdd handles ZADD key score member [score member ...].
func parseZAdd(a []string) (engine.Operation, error) {
	rest := a[1:]
	if err := pairs(rest); err != nil {
		return nil, err
	}
	entries := make([]store.ZEntry, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		score, err := parseFloat(rest[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, store.ZEntry{Member: rest[i+1], Score: score})
	}
	return engine.ZAdd{Key: a[0], Entries: entries}, nil
}

func parseZRange(a []string, reverse bool) (engine.Operation, error) {
	start, stop, err := startStop(a[1], a[2])
	if err != nil {
		return nil, err
	}
	ws, err := withScores(a[3:])
	if err != nil {
		return nil, err
	}
	return engine.ZRange{Key: a[0], Start: start, Stop: stop, Reverse: reverse, WithScores: ws}, nil
}

func parseZPop(a []string, max bool) (engine.Operation, error) {
	n, has, err := optionalCount(a[1:])
	if err != nil {
		return nil, err
	}
	if !has {
		n = 1
	}
	return engine.ZPop{Key: a[0], Count: n, Max: max}, nil
}

func bounds(lo, hi string) (store.ScoreBound, store.ScoreBound, error) {
	min, err := parseBound(lo)
	if err != nil {
		return min, store.ScoreBound{}, err
	}
	max, err := parseBound(hi)
	return min, max, err
}
