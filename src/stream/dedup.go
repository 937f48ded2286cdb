package stream

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Deduplicator remembers tweet IDs seen in this process so reconnect replays are dropped.
// False positives drop a tweet that was never seen, at the configured rate.
type Deduplicator struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewDeduplicator sizes the filter for expectedItems IDs at falsePositiveRate
func NewDeduplicator(expectedItems uint, falsePositiveRate float64) *Deduplicator {
	if expectedItems == 0 {
		expectedItems = 100000
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.001
	}
	return &Deduplicator{filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate)}
}

// Seen reports whether id was (probably) seen before and records it
func (d *Deduplicator) Seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter.TestAndAddString(id)
}
