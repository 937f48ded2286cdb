package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// defaultStopWords are common English words and platform noise that carry no
// signal in word frequency reports
var defaultStopWords = []string{
	"a", "about", "after", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "because", "been", "but", "by", "can", "could", "did", "do", "does", "for",
	"from", "had", "has", "have", "he", "her", "him", "his", "how", "i", "if", "in",
	"into", "is", "it", "its", "just", "me", "more", "my", "no", "not", "now", "of",
	"on", "one", "or", "our", "out", "rt", "s", "she", "so", "t", "than", "that",
	"the", "their", "them", "then", "there", "these", "they", "this", "to", "up",
	"us", "was", "we", "were", "what", "when", "which", "who", "will", "with",
	"would", "you", "your", "amp", "https", "http", "co",
}

// WordFilter holds a set of stop words to drop before counting tokens
type WordFilter struct {
	filteredWords map[string]bool
	mu            sync.RWMutex
}

// NewWordFilter creates a new empty WordFilter
func NewWordFilter() *WordFilter {
	return &WordFilter{
		filteredWords: make(map[string]bool),
	}
}

// NewDefaultWordFilter creates a WordFilter preloaded with the built-in stop words
func NewDefaultWordFilter() *WordFilter {
	wf := NewWordFilter()
	for _, w := range defaultStopWords {
		wf.filteredWords[w] = true
	}
	return wf
}

// LoadFromFile adds the words listed in a file.
// Each line holds one word; blank lines and lines starting with # are skipped.
func (wf *WordFilter) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open filter file %s: %w", filename, err)
	}
	defer file.Close()

	if err := wf.Load(file); err != nil {
		return fmt.Errorf("filter file %s: %w", filename, err)
	}
	return nil
}

// Load adds the words read from r, one per line
func (wf *WordFilter) Load(r io.Reader) error {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wf.filteredWords[strings.ToLower(line)] = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read error at line %d: %w", lineNum, err)
	}
	return nil
}

// IsFiltered reports whether token is a stop word (case-insensitive)
func (wf *WordFilter) IsFiltered(token string) bool {
	wf.mu.RLock()
	defer wf.mu.RUnlock()
	return wf.filteredWords[strings.ToLower(token)]
}

// Apply returns the tokens that are not filtered, preserving order
func (wf *WordFilter) Apply(tokens []string) []string {
	wf.mu.RLock()
	defer wf.mu.RUnlock()

	kept := tokens[:0:0]
	for _, tok := range tokens {
		if !wf.filteredWords[strings.ToLower(tok)] {
			kept = append(kept, tok)
		}
	}
	return kept
}

// GetFilteredCount returns the number of words in the filter
func (wf *WordFilter) GetFilteredCount() int {
	wf.mu.RLock()
	defer wf.mu.RUnlock()
	return len(wf.filteredWords)
}

// AddWord adds a single word to the filter
func (wf *WordFilter) AddWord(word string) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	wf.filteredWords[strings.ToLower(word)] = true
}

// RemoveWord removes a word from the filter
func (wf *WordFilter) RemoveWord(word string) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	delete(wf.filteredWords, strings.ToLower(word))
}
