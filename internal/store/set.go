package store

import (
	"math/rand/v2"
	"sort"
)

// Set is an unordered collection of unique members.
type Set struct {
	members map[string]struct{}
}

func NewSet(members ...string) *Set {
	s := &Set{members: make(map[string]struct{}, len(members))}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s
}

// Add inserts members and returns how many were new.
func (s *Set) Add(members ...string) int {
	n := 0
	for _, m := range members {
		if _, ok := s.members[m]; !ok {
			s.members[m] = struct{}{}
			n++
		}
	}
	return n
}

// Remove deletes members and returns how many existed.
func (s *Set) Remove(members ...string) int {
	n := 0
	for _, m := range members {
		if _, ok := s.members[m]; ok {
			delete(s.members, m)
			n++
		}
	}
	return n
}

func (s *Set) Has(member string) bool {
	_, ok := s.members[member]
	return ok
}

func (s *Set) Len() int { return len(s.members) }

// Members returns every member sorted.
func (s *Set) Members() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Pop removes and returns up to count random members.
func (s *Set) Pop(count int) []string {
	out := s.Random(count)
	for _, m := range out {
		delete(s.members, m)
	}
	return out
}

// Random picks members without removing them. A positive count returns up
// to count distinct members; a negative count returns exactly -count members
// and may repeat them.
func (s *Set) Random(count int) []string {
	if len(s.members) == 0 || count == 0 {
		return []string{}
	}
	all := make([]string, 0, len(s.members))
	for m := range s.members {
		all = append(all, m)
	}

	if count < 0 {
		out := make([]string, -count)
		for i := range out {
			out[i] = all[rand.IntN(len(all))]
		}
		return out
	}

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if count > len(all) {
		count = len(all)
	}
	return all[:count]
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c := &Set{members: make(map[string]struct{}, len(s.members))}
	for m := range s.members {
		c.members[m] = struct{}{}
	}
	return c
}

// Union returns the members present in any of sets. nil sets count as empty.
func Union(sets ...*Set) *Set {
	out := NewSet()
	for _, s := range sets {
		if s == nil {
			continue
		}
		for m := range s.members {
			out.members[m] = struct{}{}
		}
	}
	return out
}

// Intersect returns the members present in every set. A nil set makes the
// result empty.
func Intersect(sets ...*Set) *Set {
	out := NewSet()
	if len(sets) == 0 {
		return out
	}
	for _, s := range sets {
		if s == nil {
			return out
		}
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
next:
	for m := range smallest.members {
		for _, s := range sets {
			if !s.Has(m) {
				continue next
			}
		}
		out.members[m] = struct{}{}
	}
	return out
}

// Difference returns the members of the first set absent from the others.
func Difference(sets ...*Set) *Set {
	out := NewSet()
	if len(sets) == 0 || sets[0] == nil {
		return out
	}
next:
	for m := range sets[0].members {
		for _, s := range sets[1:] {
			if s != nil && s.Has(m) {
				continue next
			}
		}
		out.members[m] = struct{}{}
	}
	return out
}
