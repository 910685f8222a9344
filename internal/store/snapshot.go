package store

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
)

// Snapshot is a plain-data image of the keyspace. Each type is copied under
// its own read lock, one type after another, so a snapshot is consistent
// per type but not across types.
type Snapshot struct {
	Strings map[string]string
	Lists   map[string][]string
	Hashes  map[string]map[string]string
	Sets    map[string][]string
	ZSets   map[string][]ZEntry
	Blooms  map[string]*bloom.BloomFilter
}

// NewSnapshot returns an empty snapshot ready to be filled by a decoder.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Strings: make(map[string]string),
		Lists:   make(map[string][]string),
		Hashes:  make(map[string]map[string]string),
		Sets:    make(map[string][]string),
		ZSets:   make(map[string][]ZEntry),
		Blooms:  make(map[string]*bloom.BloomFilter),
	}
}

// Keys returns the number of entries across all types.
func (s *Snapshot) Keys() int {
	return len(s.Strings) + len(s.Lists) + len(s.Hashes) + len(s.Sets) + len(s.ZSets) + len(s.Blooms)
}

// Snapshot copies the keyspace.
func (s *Store) Snapshot() (*Snapshot, error) {
	var (
		snap = &Snapshot{}
		err  error
		errs []error
	)

	snap.Strings, err = copyOut(s.Strings, func(v string) string { return v })
	errs = append(errs, err)
	snap.Lists, err = copyOut(s.Lists, (*List).Values)
	errs = append(errs, err)
	snap.Hashes, err = copyOut(s.Hashes, (*Hash).Map)
	errs = append(errs, err)
	snap.Sets, err = copyOut(s.Sets, (*Set).Members)
	errs = append(errs, err)
	snap.ZSets, err = copyOut(s.ZSets, (*SortedSet).Entries)
	errs = append(errs, err)
	snap.Blooms, err = copyOut(s.Blooms, (*Bloom).Filter)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

// Restore builds a store holding the contents of snap. Empty containers in
// the image are skipped.
func Restore(snap *Snapshot) *Store {
	s := New()
	if snap == nil {
		return s
	}

	strs := make(map[string]string, len(snap.Strings))
	for k, v := range snap.Strings {
		strs[k] = v
	}
	s.Strings.load(strs)

	lists := make(map[string]*List, len(snap.Lists))
	for k, v := range snap.Lists {
		if len(v) > 0 {
			lists[k] = NewList(v...)
		}
	}
	s.Lists.load(lists)

	hashes := make(map[string]*Hash, len(snap.Hashes))
	for k, v := range snap.Hashes {
		if len(v) > 0 {
			hashes[k] = HashFrom(v)
		}
	}
	s.Hashes.load(hashes)

	sets := make(map[string]*Set, len(snap.Sets))
	for k, v := range snap.Sets {
		if len(v) > 0 {
			sets[k] = NewSet(v...)
		}
	}
	s.Sets.load(sets)

	zsets := make(map[string]*SortedSet, len(snap.ZSets))
	for k, v := range snap.ZSets {
		if len(v) == 0 {
			continue
		}
		z := NewSortedSet()
		for _, e := range v {
			z.Add(e.Member, e.Score)
		}
		zsets[k] = z
	}
	s.ZSets.load(zsets)

	blooms := make(map[string]*Bloom, len(snap.Blooms))
	for k, v := range snap.Blooms {
		if v != nil {
			blooms[k] = BloomFromFilter(v)
		}
	}
	s.Blooms.load(blooms)

	return s
}
