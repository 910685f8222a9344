package store

import (
	"errors"
	"math"
	"sort"
	"strconv"
)

var (
	ErrNotInteger = errors.New("value is not an integer or out of range")
	ErrOverflow   = errors.New("increment or decrement would overflow")
	ErrNaN        = errors.New("resulting score is not a number (NaN)")
)

// Hash maps fields to values. Like List it relies on the owning TypedMap for
// locking.
type Hash struct {
	fields map[string]string
}

func NewHash() *Hash {
	return &Hash{fields: make(map[string]string)}
}

// HashFrom builds a hash from a plain map, copying it.
func HashFrom(m map[string]string) *Hash {
	h := &Hash{fields: make(map[string]string, len(m))}
	for k, v := range m {
		h.fields[k] = v
	}
	return h
}

// Set stores value under field and reports whether the field is new.
func (h *Hash) Set(field, value string) bool {
	_, existed := h.fields[field]
	h.fields[field] = value
	return !existed
}

// SetNX stores value only when field is absent.
func (h *Hash) SetNX(field, value string) bool {
	if _, ok := h.fields[field]; ok {
		return false
	}
	h.fields[field] = value
	return true
}

func (h *Hash) Get(field string) (string, bool) {
	v, ok := h.fields[field]
	return v, ok
}

// Del removes fields and returns how many existed.
func (h *Hash) Del(fields ...string) int {
	n := 0
	for _, f := range fields {
		if _, ok := h.fields[f]; ok {
			delete(h.fields, f)
			n++
		}
	}
	return n
}

func (h *Hash) Exists(field string) bool {
	_, ok := h.fields[field]
	return ok
}

func (h *Hash) Len() int { return len(h.fields) }

// Keys returns field names sorted, so HKEYS and HVALS line up.
func (h *Hash) Keys() []string {
	keys := make([]string, 0, len(h.fields))
	for k := range h.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns values in the order of Keys.
func (h *Hash) Values() []string {
	keys := h.Keys()
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = h.fields[k]
	}
	return vals
}

// Pairs returns field, value, field, value, ... in the order of Keys.
func (h *Hash) Pairs() []string {
	keys := h.Keys()
	out := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, h.fields[k])
	}
	return out
}

// Map returns a copy of the fields.
func (h *Hash) Map() map[string]string {
	m := make(map[string]string, len(h.fields))
	for k, v := range h.fields {
		m[k] = v
	}
	return m
}

// IncrBy adds delta to the integer stored in field, treating a missing field
// as 0.
func (h *Hash) IncrBy(field string, delta int64) (int64, error) {
	cur := int64(0)
	if v, ok := h.fields[field]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		cur = n
	}
	next, err := AddInt64(cur, delta)
	if err != nil {
		return 0, err
	}
	h.fields[field] = strconv.FormatInt(next, 10)
	return next, nil
}

// AddInt64 adds two integers, failing instead of wrapping around.
func AddInt64(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}
