package store

const listInitialCap = 16

// List is a double-ended queue of byte strings backed by a slice with free
// space on both sides. It has no lock of its own; callers reach it through
// the list TypedMap, which serialises access.
type List struct {
	items []string
	head  int // index of the first element
	tail  int // index one past the last element
}

// NewList creates a list holding values in order, head first.
func NewList(values ...string) *List {
	c := listInitialCap
	for c < len(values)*2 {
		c *= 2
	}
	l := &List{items: make([]string, c)}
	l.head = (c - len(values)) / 2
	l.tail = l.head
	for _, v := range values {
		l.items[l.tail] = v
		l.tail++
	}
	return l
}

// Len returns the number of elements.
func (l *List) Len() int { return l.tail - l.head }

// PushFront pushes each value onto the head in argument order, so the last
// value ends up first. It returns the new length.
func (l *List) PushFront(values ...string) int {
	if l.head-len(values) < 0 {
		l.grow(len(values))
	}
	for _, v := range values {
		l.head--
		l.items[l.head] = v
	}
	return l.Len()
}

// PushBack appends values to the tail and returns the new length.
func (l *List) PushBack(values ...string) int {
	if l.tail+len(values) > len(l.items) {
		l.grow(len(values))
	}
	for _, v := range values {
		l.items[l.tail] = v
		l.tail++
	}
	return l.Len()
}

// PopFront removes and returns the head element.
func (l *List) PopFront() (string, bool) {
	if l.head >= l.tail {
		return "", false
	}
	v := l.items[l.head]
	l.items[l.head] = ""
	l.head++
	l.maybeShrink()
	return v, true
}

// PopBack removes and returns the tail element.
func (l *List) PopBack() (string, bool) {
	if l.head >= l.tail {
		return "", false
	}
	l.tail--
	v := l.items[l.tail]
	l.items[l.tail] = ""
	l.maybeShrink()
	return v, true
}

// NormalizeIndex maps a possibly negative index onto [0, n). Negative indices
// count from the tail. ok is false when the result is out of range.
func NormalizeIndex(i, n int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

// Index returns the element at a normalized index.
func (l *List) Index(i int) (string, bool) {
	idx, ok := NormalizeIndex(i, l.Len())
	if !ok {
		return "", false
	}
	return l.items[l.head+idx], true
}

// SetIndex replaces the element at a normalized index.
func (l *List) SetIndex(i int, v string) bool {
	idx, ok := NormalizeIndex(i, l.Len())
	if !ok {
		return false
	}
	l.items[l.head+idx] = v
	return true
}

// ClampRange converts an inclusive [start, stop] pair with Redis semantics
// into a half-open [from, to) slice range over n elements. A negative start
// counts from the tail and clamps at 0; stop clamps at the last element.
func ClampRange(start, stop, n int) (from, to int) {
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0
	}
	return start, stop + 1
}

// Range returns a copy of the elements in the inclusive range [start, stop].
func (l *List) Range(start, stop int) []string {
	from, to := ClampRange(start, stop, l.Len())
	out := make([]string, to-from)
	copy(out, l.items[l.head+from:l.head+to])
	return out
}

// Trim keeps only the inclusive range [start, stop].
func (l *List) Trim(start, stop int) {
	from, to := ClampRange(start, stop, l.Len())
	kept := l.items[l.head+from : l.head+to]
	*l = *NewList(kept...)
}

// Remove deletes up to count occurrences of v. A positive count scans from
// the head, a negative one from the tail, and zero removes every occurrence.
func (l *List) Remove(count int, v string) int {
	values := l.items[l.head:l.tail]
	drop := make([]bool, len(values))
	removed := 0
	limit := count
	if limit < 0 {
		limit = -limit
	}

	if count >= 0 {
		for i := 0; i < len(values); i++ {
			if values[i] == v && (count == 0 || removed < limit) {
				drop[i] = true
				removed++
			}
		}
	} else {
		for i := len(values) - 1; i >= 0 && removed < limit; i-- {
			if values[i] == v {
				drop[i] = true
				removed++
			}
		}
	}
	if removed == 0 {
		return 0
	}

	kept := make([]string, 0, len(values)-removed)
	for i, x := range values {
		if !drop[i] {
			kept = append(kept, x)
		}
	}
	*l = *NewList(kept...)
	return removed
}

// Values returns a copy of every element, head first.
func (l *List) Values() []string {
	return l.Range(0, -1)
}

// grow doubles capacity until minSpace more elements fit and recenters.
func (l *List) grow(minSpace int) {
	n := l.Len()
	c := len(l.items) * 2
	for c < n+2*minSpace+listInitialCap {
		c *= 2
	}
	items := make([]string, c)
	head := (c - n) / 2
	copy(items[head:], l.items[l.head:l.tail])
	l.items = items
	l.head = head
	l.tail = head + n
}

// maybeShrink recenters an empty list and halves one that is mostly unused.
func (l *List) maybeShrink() {
	n := l.Len()
	switch {
	case n == 0:
		l.head = len(l.items) / 2
		l.tail = l.head
	case len(l.items) > 64 && n < len(l.items)/4:
		c := len(l.items) / 2
		items := make([]string, c)
		head := (c - n) / 2
		copy(items[head:], l.items[l.head:l.tail])
		l.items = items
		l.head = head
		l.tail = head + n
	}
}
