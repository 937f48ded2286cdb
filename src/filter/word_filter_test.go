package filter

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// TestDefaultWordFilter tests the built-in stop word list.
//
// Rationale: Word frequency reports on tweets are useless when "the" and "rt"
// dominate, so the default filter must drop them without any configuration.
func TestDefaultWordFilter(t *testing.T) {
	wf := NewDefaultWordFilter()
	for _, w := range []string{"the", "THE", "rt", "and", "https"} {
		if !wf.IsFiltered(w) {
			t.Errorf("Expected %q to be a default stop word", w)
		}
	}
	for _, w := range []string{"election", "pmqs", "brexit"} {
		if wf.IsFiltered(w) {
			t.Errorf("Expected %q not to be filtered", w)
		}
	}
}

func TestAddAndRemoveWord(t *testing.T) {
	wf := NewWordFilter()
	wf.AddWord("WORD")

	if !wf.IsFiltered("word") {
		t.Error("Expected 'word' to be filtered (case insensitive)")
	}
	wf.RemoveWord("Word")
	if wf.IsFiltered("word") {
		t.Error("Expected 'word' to not be filtered after removal")
	}
}

// TestApply tests filtering a token list.
//
// Rationale: Order must be preserved so that callers can still map tokens back
// to positions, and the input slice must not be modified.
func TestApply(t *testing.T) {
	wf := NewDefaultWordFilter()
	in := []string{"the", "vote", "is", "on", "Tuesday"}
	orig := append([]string(nil), in...)

	got := wf.Apply(in)
	want := []string{"vote", "Tuesday"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(in, orig) {
		t.Errorf("Apply modified its input: %v", in)
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	content := `# This is a comment
test
WORD

# Another comment
mixedcase`

	wf := NewWordFilter()
	if err := wf.Load(strings.NewReader(content)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if wf.GetFilteredCount() != 3 {
		t.Errorf("Expected 3 words, got %d", wf.GetFilteredCount())
	}
	if wf.IsFiltered("comment") {
		t.Error("Comment text must not be loaded as a word")
	}
}

func TestLoadFromFileAddsToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwords.txt")
	if err := os.WriteFile(path, []byte("pmqs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	wf := NewDefaultWordFilter()
	before := wf.GetFilteredCount()
	if err := wf.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if wf.GetFilteredCount() != before+1 {
		t.Errorf("Expected %d words, got %d", before+1, wf.GetFilteredCount())
	}
	if !wf.IsFiltered("PMQs") || !wf.IsFiltered("the") {
		t.Error("Expected both file and default words to be filtered")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	wf := NewWordFilter()
	if err := wf.LoadFromFile(filepath.Join(t.TempDir(), "nonexistent_file.txt")); err == nil {
		t.Error("Expected error when loading nonexistent file")
	}
}

func TestConcurrentAccess(t *testing.T) {
	wf := NewDefaultWordFilter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				wf.IsFiltered("the")
				wf.Apply([]string{"a", "b", "c"})
				if j%10 == 0 {
					wf.AddWord("extra")
				}
			}
		}(i)
	}
	wg.Wait()

	if !wf.IsFiltered("extra") || !wf.IsFiltered("the") {
		t.Error("Filter lost words under concurrent access")
	}
}
