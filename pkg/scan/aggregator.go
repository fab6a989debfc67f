package scan

import (
	"sort"
	"sync"
	"time"
)

// RankedEntry is one address in the live ranked collection.
type RankedEntry struct {
	Addr string
	RTT  time.Duration

	seq uint64 // insertion order, breaks latency ties
}

// Aggregator is a thread-safe ranked collection of the best latency results.
// Entries are kept in ascending round-trip order; equal times keep their
// first-seen order so the live view does not reshuffle on ties. Results above
// the configured ceiling are dropped at insertion, which bounds memory on
// very large scans.
type Aggregator struct {
	mu      sync.Mutex
	entries []RankedEntry
	known   map[string]time.Duration
	ceiling time.Duration // zero means no ceiling
	seq     uint64
}

// NewAggregator returns an empty aggregator. A zero ceiling disables the
// latency cap.
func NewAggregator(ceiling time.Duration) *Aggregator {
	return &Aggregator{
		known:   make(map[string]time.Duration),
		ceiling: ceiling,
	}
}

// Insert records a successful probe result and reports whether the entry was
// kept. A repeat observation for a known address wins only when it is faster.
func (a *Aggregator) Insert(addr string, rtt time.Duration) bool {
	if a.ceiling > 0 && rtt > a.ceiling {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if current, exists := a.known[addr]; exists {
		if rtt >= current {
			return false
		}
		a.replace(addr, rtt)
		return true
	}

	a.seq++
	a.known[addr] = rtt
	a.insert(RankedEntry{Addr: addr, RTT: rtt, seq: a.seq})
	return true
}

// replace removes the existing entry for addr and re-inserts it with the
// faster time, keeping its original tie-break sequence.
func (a *Aggregator) replace(addr string, rtt time.Duration) {
	for i := range a.entries {
		if a.entries[i].Addr != addr {
			continue
		}
		seq := a.entries[i].seq
		a.entries = append(a.entries[:i], a.entries[i+1:]...)
		a.known[addr] = rtt
		a.insert(RankedEntry{Addr: addr, RTT: rtt, seq: seq})
		return
	}
}

func (a *Aggregator) insert(entry RankedEntry) {
	i := sort.Search(len(a.entries), func(i int) bool {
		if a.entries[i].RTT != entry.RTT {
			return a.entries[i].RTT > entry.RTT
		}
		return a.entries[i].seq > entry.seq
	})
	a.entries = append(a.entries, RankedEntry{})
	copy(a.entries[i+1:], a.entries[i:])
	a.entries[i] = entry
}

// Snapshot copies out the current top-n entries. The lock is held only for
// the duration of the copy, never while the caller renders. n <= 0 returns
// every entry.
func (a *Aggregator) Snapshot(n int) []RankedEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= 0 || n > len(a.entries) {
		n = len(a.entries)
	}
	snapshot := make([]RankedEntry, n)
	copy(snapshot, a.entries[:n])
	return snapshot
}

// Len returns the number of ranked entries currently held.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
