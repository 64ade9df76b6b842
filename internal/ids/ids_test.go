package ids

import (
	"testing"
	"time"
)

func TestNewAtOrdersByTimestamp(t *testing.T) {
	base := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	earlier := NewAt(base)
	later := NewAt(base.Add(time.Second))
	if !(earlier < later) {
		t.Fatalf("ids out of order: %s !< %s", earlier, later)
	}
}

func TestNewAtMonotonicWithinSameMillisecond(t *testing.T) {
	// Same timestamp: the shared entropy source must still produce
	// strictly increasing ids, which is what the ledger's same-date
	// creation-order tie-break rests on.
	at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	prev := NewAt(at)
	for i := 0; i < 100; i++ {
		next := NewAt(at)
		if !(prev < next) {
			t.Fatalf("ids not monotonic: %s !< %s", prev, next)
		}
		prev = next
	}
}

func TestNewIsSortableAfterPinnedIDs(t *testing.T) {
	pinned := NewAt(time.Now().Add(-time.Minute))
	current := New()
	if !(pinned < current) {
		t.Fatalf("pinned id %s not before current %s", pinned, current)
	}
}
