package pipeline

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
)

// TokenCount holds a token and its count.
type TokenCount struct {
	Token string
	Count int
}

// TokenCounter keeps track of how many times each word appears across analyzed tweets.
type TokenCounter struct {
	counts     map[string]int
	totalCount int64 // running total of all token counts
	mu         sync.RWMutex
}

// NewTokenCounter creates a new TokenCounter with an empty map.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{counts: make(map[string]int)}
}

// IncrementTokens increases the count for each token in the list.
func (tc *TokenCounter) IncrementTokens(tokens []string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, token := range tokens {
		tc.counts[token]++
	}
	atomic.AddInt64(&tc.totalCount, int64(len(tokens)))
}

// GetCount returns the count for a specific token.
func (tc *TokenCounter) GetCount(token string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.counts[token]
}

// Counts returns a snapshot copy of all token counts.
func (tc *TokenCounter) Counts() map[string]int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	snapshot := make(map[string]int, len(tc.counts))
	for token, count := range tc.counts {
		snapshot[token] = count
	}
	return snapshot
}

// Distinct returns the number of distinct tokens.
func (tc *TokenCounter) Distinct() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.counts)
}

// TopTokens returns the n most frequent tokens, most frequent first.
// Ties are ordered alphabetically. n <= 0 returns every token.
func (tc *TokenCounter) TopTokens(n int) []TokenCount {
	counts := tc.Counts()
	sorted := make([]TokenCount, 0, len(counts))
	for token, count := range counts {
		sorted = append(sorted, TokenCount{Token: token, Count: count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Token < sorted[j].Token
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Clear resets all token counts to zero.
func (tc *TokenCounter) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.counts = make(map[string]int)
	atomic.StoreInt64(&tc.totalCount, 0)
}

// GetTotalTokens returns the total number of token occurrences (sum of all counts)
func (tc *TokenCounter) GetTotalTokens() int {
	return int(atomic.LoadInt64(&tc.totalCount))
}

// SaveToFile saves the current token counts to a file using gob encoding
func (tc *TokenCounter) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(tc.Counts()); err != nil {
		return fmt.Errorf("failed to encode counts to %s: %w", filename, err)
	}
	return nil
}

// LoadFromFile replaces the current counts with those saved in a gob file
func (tc *TokenCounter) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var counts map[string]int
	if err := gob.NewDecoder(file).Decode(&counts); err != nil {
		return fmt.Errorf("failed to decode counts from %s: %w", filename, err)
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	tc.SetCountsDirectly(counts)
	return nil
}

// SetCountsDirectly replaces the counts and recomputes the running total
func (tc *TokenCounter) SetCountsDirectly(counts map[string]int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.counts = counts
	total := int64(0)
	for _, count := range counts {
		total += int64(count)
	}
	atomic.StoreInt64(&tc.totalCount, total)
}
