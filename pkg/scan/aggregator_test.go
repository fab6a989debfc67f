package scan

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestAggregatorRoundTrip(t *testing.T) {
	agg := NewAggregator(0)
	if !agg.Insert("1.1.1.1", 50*time.Millisecond) {
		t.Fatal("Insert() rejected a valid result")
	}

	snapshot := agg.Snapshot(1)
	if len(snapshot) != 1 {
		t.Fatalf("Snapshot() count = %d, want 1", len(snapshot))
	}
	if snapshot[0].Addr != "1.1.1.1" || snapshot[0].RTT != 50*time.Millisecond {
		t.Errorf("Snapshot() = %+v, want {1.1.1.1 50ms}", snapshot[0])
	}
}

func TestAggregatorRankingInvariant(t *testing.T) {
	agg := NewAggregator(0)
	rng := rand.New(rand.NewSource(7))
	for _, i := range rng.Perm(100) {
		agg.Insert(fmt.Sprintf("10.0.0.%d", i+1), time.Duration(i+1)*time.Millisecond)
	}

	snapshot := agg.Snapshot(0)
	if len(snapshot) != 100 {
		t.Fatalf("Snapshot() count = %d, want 100", len(snapshot))
	}
	for i := 1; i < len(snapshot); i++ {
		if snapshot[i-1].RTT > snapshot[i].RTT {
			t.Fatalf("snapshot not sorted at %d: %v > %v", i, snapshot[i-1].RTT, snapshot[i].RTT)
		}
	}
}

func TestAggregatorTieBreakFirstSeen(t *testing.T) {
	agg := NewAggregator(0)
	agg.Insert("10.0.0.1", 20*time.Millisecond)
	agg.Insert("10.0.0.2", 20*time.Millisecond)
	agg.Insert("10.0.0.3", 20*time.Millisecond)

	snapshot := agg.Snapshot(0)
	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	for i, addr := range want {
		if snapshot[i].Addr != addr {
			t.Errorf("snapshot[%d] = %s, want %s", i, snapshot[i].Addr, addr)
		}
	}
}

func TestAggregatorCeiling(t *testing.T) {
	agg := NewAggregator(100 * time.Millisecond)

	if agg.Insert("10.0.0.1", 150*time.Millisecond) {
		t.Error("Insert() kept a result above the ceiling")
	}
	if !agg.Insert("10.0.0.2", 100*time.Millisecond) {
		t.Error("Insert() dropped a result at the ceiling")
	}
	if !agg.Insert("10.0.0.3", 10*time.Millisecond) {
		t.Error("Insert() dropped a result below the ceiling")
	}

	for _, entry := range agg.Snapshot(0) {
		if entry.RTT > 100*time.Millisecond {
			t.Errorf("snapshot exposes %s above the ceiling", entry.Addr)
		}
	}
	if agg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", agg.Len())
	}
}

func TestAggregatorBestLatencyWins(t *testing.T) {
	agg := NewAggregator(0)
	agg.Insert("10.0.0.1", 50*time.Millisecond)

	if agg.Insert("10.0.0.1", 80*time.Millisecond) {
		t.Error("Insert() replaced an entry with a slower time")
	}
	if !agg.Insert("10.0.0.1", 30*time.Millisecond) {
		t.Error("Insert() rejected a faster time")
	}

	snapshot := agg.Snapshot(0)
	if len(snapshot) != 1 {
		t.Fatalf("Snapshot() count = %d, want 1", len(snapshot))
	}
	if snapshot[0].RTT != 30*time.Millisecond {
		t.Errorf("RTT = %v, want 30ms", snapshot[0].RTT)
	}
}

func TestAggregatorConcurrentInserts(t *testing.T) {
	agg := NewAggregator(0)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agg.Insert(fmt.Sprintf("10.0.%d.%d", i/256, i%256), time.Duration(i+1)*time.Millisecond)
		}(i)
	}
	wg.Wait()

	snapshot := agg.Snapshot(0)
	if len(snapshot) != 200 {
		t.Fatalf("Snapshot() count = %d, want 200", len(snapshot))
	}
	for i, entry := range snapshot {
		if want := time.Duration(i+1) * time.Millisecond; entry.RTT != want {
			t.Fatalf("snapshot[%d].RTT = %v, want %v", i, entry.RTT, want)
		}
	}
}
