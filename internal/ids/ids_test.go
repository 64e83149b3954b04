package ids

import (
	"sort"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	if _, err := ulid.ParseStrict(a); err != nil {
		t.Fatalf("generated ID %q is not a ULID: %v", a, err)
	}
	if a == b {
		t.Error("consecutive IDs must differ")
	}
	if !sort.StringsAreSorted([]string{a, b}) {
		t.Errorf("IDs must sort in generation order: %q, %q", a, b)
	}
}

func TestNew_Concurrent(t *testing.T) {
	const n = 100

	var wg sync.WaitGroup
	results := make([]string, n)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = New()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range results {
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}
