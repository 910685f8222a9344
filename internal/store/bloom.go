package store

import (
	"errors"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	DefaultBloomCapacity  = 1000
	DefaultBloomErrorRate = 0.01
)

var ErrBloomParams = errors.New("invalid bloom filter parameters")

// Bloom is a probabilistic membership filter: Test never returns false for an
// added item but may return true for one that was never added.
type Bloom struct {
	filter *bloom.BloomFilter
}

// NewBloom sizes a filter for capacity items at the given false positive rate.
func NewBloom(capacity uint, errorRate float64) (*Bloom, error) {
	if capacity == 0 || errorRate <= 0 || errorRate >= 1 {
		return nil, ErrBloomParams
	}
	return &Bloom{filter: bloom.NewWithEstimates(capacity, errorRate)}, nil
}

// NewDefaultBloom creates a filter with the default sizing used by BF.ADD on
// a missing key.
func NewDefaultBloom() *Bloom {
	return &Bloom{filter: bloom.NewWithEstimates(DefaultBloomCapacity, DefaultBloomErrorRate)}
}

// BloomFromFilter wraps an existing filter, e.g. one decoded from disk.
func BloomFromFilter(f *bloom.BloomFilter) *Bloom {
	return &Bloom{filter: f}
}

// Add inserts item and reports whether it was (probably) not present before.
func (b *Bloom) Add(item string) bool {
	return !b.filter.TestOrAddString(item)
}

// Test reports whether item may have been added.
func (b *Bloom) Test(item string) bool {
	return b.filter.TestString(item)
}

// Bits returns the size of the underlying bit array.
func (b *Bloom) Bits() uint { return b.filter.Cap() }

// Hashes returns the number of hash functions.
func (b *Bloom) Hashes() uint { return b.filter.K() }

// Filter returns a copy of the underlying filter.
func (b *Bloom) Filter() *bloom.BloomFilter { return b.filter.Copy() }
