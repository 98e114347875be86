package goid

import (
	"sync"
	"testing"
)

func TestIDStableWithinGoroutine(t *testing.T) {
	a := ID()
	b := ID()
	if a == 0 {
		t.Fatal("expected non-zero goroutine id")
	}
	if a != b {
		t.Errorf("id changed within one goroutine: %d then %d", a, b)
	}
}

func TestIDDiffersAcrossGoroutines(t *testing.T) {
	main := ID()

	var wg sync.WaitGroup
	ids := make(chan uint64, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{main: true}
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate goroutine id %d", id)
		}
		seen[id] = true
	}
}
