package ids

import "testing"

func TestGenerateUnique(t *testing.T) {
	seen := make(map[int64]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := Generate()
		if id <= 0 {
			t.Fatalf("non-positive id: %d", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id: %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenerateMonotonic(t *testing.T) {
	prev := Generate()
	for i := 0; i < 1000; i++ {
		id := Generate()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestGenerateConcurrent(t *testing.T) {
	const workers, per = 8, 1000
	out := make(chan int64, workers*per)
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < per; i++ {
				out <- Generate()
			}
		}()
	}
	seen := make(map[int64]struct{}, workers*per)
	for i := 0; i < workers*per; i++ {
		id := <-out
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id under concurrency: %d", id)
		}
		seen[id] = struct{}{}
	}
}
