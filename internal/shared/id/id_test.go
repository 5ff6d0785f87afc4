package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestNewSurfaceID(t *testing.T) {
	s := NewSurfaceID()

	if !strings.HasPrefix(string(s), "surf_") {
		t.Errorf("SurfaceID should start with 'surf_', got: %s", s)
	}
	if s.IsZero() {
		t.Error("minted SurfaceID should not be zero")
	}

	parsed, err := ParseSurfaceID(string(s))
	if err != nil {
		t.Fatalf("ParseSurfaceID failed: %v", err)
	}
	if parsed != s {
		t.Errorf("ParseSurfaceID returned %s, want %s", parsed, s)
	}
}

func TestParseSurfaceIDRejectsGarbage(t *testing.T) {
	invalid := []string{
		"",
		"surf_",
		"surf_not-a-ulid",
		"conn_01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"01ARZ3NDEKTSV4RRFFQ69G5FAV",
	}

	for _, raw := range invalid {
		if _, err := ParseSurfaceID(raw); err == nil {
			t.Errorf("ParseSurfaceID(%q) should fail", raw)
		}
	}
}

func TestNewConnectionID(t *testing.T) {
	a := NewConnectionID()
	b := NewConnectionID()

	if !strings.HasPrefix(a.String(), "conn_") {
		t.Errorf("ConnectionID should start with 'conn_', got: %s", a)
	}
	if a == b {
		t.Error("connection IDs should be unique")
	}
}

func TestTimestamp(t *testing.T) {
	gen := NewGenerator()

	before := time.Now()
	s := NewSurfaceIDFrom(gen)
	after := time.Now()

	ts, err := Timestamp(s)
	if err != nil {
		t.Fatalf("Failed to extract timestamp: %v", err)
	}

	// ULID timestamps have millisecond precision
	if ts.UnixMilli() < before.UnixMilli() || ts.UnixMilli() > after.UnixMilli() {
		t.Errorf("Timestamp should be between %d and %d ms, got %d ms",
			before.UnixMilli(), after.UnixMilli(), ts.UnixMilli())
	}
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	gen := NewGenerator()

	prev := NewSurfaceIDFrom(gen)
	for i := 0; i < 1000; i++ {
		next := NewSurfaceIDFrom(gen)
		if next <= prev {
			t.Fatalf("surface IDs should sort in mint order: %s <= %s", next, prev)
		}
		prev = next
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const idsPerGoroutine = 100

	var wg sync.WaitGroup
	idChan := make(chan SurfaceID, goroutines*idsPerGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				idChan <- NewSurfaceIDFrom(gen)
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[SurfaceID]bool)
	for s := range idChan {
		if seen[s] {
			t.Errorf("Duplicate ID found in concurrent generation: %s", s)
		}
		seen[s] = true
	}

	if len(seen) != goroutines*idsPerGoroutine {
		t.Errorf("Expected %d unique IDs, got %d", goroutines*idsPerGoroutine, len(seen))
	}
}

func TestDefaultGenerator(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance")
	}
}

func BenchmarkNewSurfaceID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NewSurfaceID()
	}
}
