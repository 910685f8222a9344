package store

import (
	"errors"
	"sort"
	"sync/atomic"
)

// Type names reported by TYPE, in the order keyspace-wide lookups check them.
const (
	TypeString = "string"
	TypeList   = "list"
	TypeHash   = "hash"
	TypeSet    = "set"
	TypeZSet   = "zset"
	TypeBloom  = "MBbloom--"
	TypeNone   = "none"
)

// Store is the whole keyspace: one independent TypedMap per value type. The
// same key may exist in several typed maps at once; keyspace-wide commands
// look at all of them.
type Store struct {
	changes atomic.Int64

	Strings *TypedMap[string]
	Lists   *TypedMap[*List]
	Hashes  *TypedMap[*Hash]
	Sets    *TypedMap[*Set]
	ZSets   *TypedMap[*SortedSet]
	Blooms  *TypedMap[*Bloom]
}

func New() *Store {
	s := &Store{}
	s.Strings = newTypedMap[string](TypeString, &s.changes)
	s.Lists = newTypedMap[*List](TypeList, &s.changes)
	s.Hashes = newTypedMap[*Hash](TypeHash, &s.changes)
	s.Sets = newTypedMap[*Set](TypeSet, &s.changes)
	s.ZSets = newTypedMap[*SortedSet](TypeZSet, &s.changes)
	s.Blooms = newTypedMap[*Bloom](TypeBloom, &s.changes)
	return s
}

// Changes returns a counter that grows with every successful mutation.
func (s *Store) Changes() int64 { return s.changes.Load() }

// keyspace is implemented by every TypedMap regardless of its value type.
type keyspace interface {
	Name() string
	Delete(keys ...string) (int, error)
	Exists(key string) (bool, error)
	Len() (int, error)
	Keys() ([]string, error)
	Rename(src, dst string) (bool, error)
	Clear()
}

func (s *Store) all() []keyspace {
	return []keyspace{s.Strings, s.Lists, s.Hashes, s.Sets, s.ZSets, s.Blooms}
}

// Delete removes each key from every typed map and returns how many keys
// existed in at least one of them.
func (s *Store) Delete(keys ...string) (int, error) {
	n := 0
	var errs []error
	for _, k := range keys {
		found := false
		for _, m := range s.all() {
			d, err := m.Delete(k)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if d > 0 {
				found = true
			}
		}
		if found {
			n++
		}
	}
	return n, errors.Join(errs...)
}

// Exists reports whether key is present in any typed map.
func (s *Store) Exists(key string) (bool, error) {
	var errs []error
	for _, m := range s.all() {
		ok, err := m.Exists(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}

// Type returns the first type holding key, or TypeNone.
func (s *Store) Type(key string) (string, error) {
	for _, m := range s.all() {
		ok, err := m.Exists(key)
		if err != nil {
			return "", err
		}
		if ok {
			return m.Name(), nil
		}
	}
	return TypeNone, nil
}

// Keys returns the sorted, de-duplicated keys matching pattern across all
// typed maps.
func (s *Store) Keys(pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var errs []error
	for _, m := range s.all() {
		keys, err := m.Keys()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, k := range keys {
			if pattern == "*" || Match(pattern, k) {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, errors.Join(errs...)
}

// Size returns the number of distinct keys.
func (s *Store) Size() (int, error) {
	keys, err := s.Keys("*")
	return len(keys), err
}

// Counts returns the number of keys per type name.
func (s *Store) Counts() map[string]int {
	out := make(map[string]int, 6)
	for _, m := range s.all() {
		n, err := m.Len()
		if err != nil {
			continue
		}
		out[m.Name()] = n
	}
	return out
}

// Rename moves key in every typed map that holds it. It reports false when no
// map had the key.
func (s *Store) Rename(src, dst string) (bool, error) {
	if ok, err := s.Exists(src); err != nil || !ok {
		return false, err
	}
	found := false
	for _, m := range s.all() {
		ok, err := m.Rename(src, dst)
		if err != nil {
			return found, err
		}
		if ok {
			found = true
		} else if src != dst {
			// dst must not keep a stale value of a type src did not have
			if _, err := m.Delete(dst); err != nil {
				return found, err
			}
		}
	}
	return found, nil
}

// Flush drops every key of every type.
func (s *Store) Flush() {
	for _, m := range s.all() {
		m.Clear()
	}
}
