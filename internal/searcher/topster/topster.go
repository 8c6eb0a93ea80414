// Package topster keeps the best K scored candidates seen during a ranking
// pass. It is a bounded binary min-heap whose root is the weakest retained
// entry, so each admission or eviction costs O(log K).
package topster

import "sort"

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// KV is one scored candidate.
type KV struct {
	Key       uint64 `json:"key"`
	Rank      uint64 `json:"rank"`
	Tiebreak1 int64  `json:"tiebreak1"`
	Tiebreak2 int64  `json:"tiebreak2"`
}

// Outranks reports whether a sorts before b: higher Rank first, then higher
// Tiebreak1, then higher Tiebreak2, then higher Key. This is the only
// ordering used by the package; heap maintenance and Sort both call it.
func Outranks(a, b KV) bool {
	if a.Rank != b.Rank {
		return a.Rank > b.Rank
	}
	if a.Tiebreak1 != b.Tiebreak1 {
		return a.Tiebreak1 > b.Tiebreak1
	}
	if a.Tiebreak2 != b.Tiebreak2 {
		return a.Tiebreak2 > b.Tiebreak2
	}
	return a.Key > b.Key
}

// Topster accumulates candidates for a single query. It is not safe for
// concurrent use.
type Topster struct {
	data      []KV
	capacity  int
	seen      map[uint64]struct{}
	finalized bool
}

func New(capacity int) *Topster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Topster{
		data:     make([]KV, 0, capacity),
		capacity: capacity,
		seen:     make(map[uint64]struct{}),
	}
}

// Add offers a candidate and reports whether it is retained.
//
// The first submission of a key is final. Any later submission of the same
// key is ignored, even with a better rank and even if the first one has
// since been evicted. A candidate rejected because the heap is full still
// counts as seen.
func (t *Topster) Add(key, rank uint64, tiebreak1, tiebreak2 int64) bool {
	if t.finalized {
		panic("topster: Add called after Sort")
	}
	if _, dup := t.seen[key]; dup {
		return false
	}
	t.seen[key] = struct{}{}

	kv := KV{Key: key, Rank: rank, Tiebreak1: tiebreak1, Tiebreak2: tiebreak2}
	if len(t.data) < t.capacity {
		t.data = append(t.data, kv)
		t.up(len(t.data) - 1)
		return true
	}
	if !Outranks(kv, t.data[0]) {
		return false
	}
	t.data[0] = kv
	t.down(0)
	return true
}

// up moves the entry at i toward the root while its parent outranks it.
func (t *Topster) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !Outranks(t.data[parent], t.data[i]) {
			break
		}
		t.data[parent], t.data[i] = t.data[i], t.data[parent]
		i = parent
	}
}

// down moves the entry at i toward the leaves, swapping with the weaker
// child while the entry outranks it.
func (t *Topster) down(i int) {
	n := len(t.data)
	for {
		weaker := 2*i + 1
		if weaker >= n {
			return
		}
		if right := weaker + 1; right < n && Outranks(t.data[weaker], t.data[right]) {
			weaker = right
		}
		if !Outranks(t.data[i], t.data[weaker]) {
			return
		}
		t.data[i], t.data[weaker] = t.data[weaker], t.data[i]
		i = weaker
	}
}

// Sort orders the retained entries best first. After Sort the Topster is
// read-only until Clear.
func (t *Topster) Sort() {
	sort.SliceStable(t.data, func(i, j int) bool {
		return Outranks(t.data[i], t.data[j])
	})
	t.finalized = true
}

// Clear empties the Topster and forgets every seen key.
func (t *Topster) Clear() {
	t.data = t.data[:0]
	clear(t.seen)
	t.finalized = false
}

// Len returns the number of retained entries.
func (t *Topster) Len() int { return len(t.data) }

func (t *Topster) Cap() int { return t.capacity }

// Seen returns the number of distinct keys submitted since the last Clear.
func (t *Topster) Seen() int { return len(t.seen) }

func (t *Topster) Sorted() bool { return t.finalized }

// KeyAt returns the key at position i. Positions are in rank order only
// after Sort.
func (t *Topster) KeyAt(i int) uint64 { return t.data[i].Key }

func (t *Topster) KVAt(i int) KV { return t.data[i] }

// KVs returns a copy of the retained entries.
func (t *Topster) KVs() []KV {
	out := make([]KV, len(t.data))
	copy(out, t.data)
	return out
}
