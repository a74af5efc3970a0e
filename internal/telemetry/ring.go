package telemetry

// RingCapacity bounds the in-memory telemetry buffer.
const RingCapacity = 50

// Ring is a fixed-capacity append-only sequence of log entries. When full,
// appending evicts the oldest entry. Index 0 is always the oldest retained
// entry. The zero value is not usable; use NewRing.
type Ring struct {
	entries  []LogEntry
	capacity int
}

// NewRing creates a ring with the given capacity. Non-positive capacities
// fall back to RingCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = RingCapacity
	}
	return &Ring{
		entries:  make([]LogEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append inserts an entry, evicting the oldest when the ring is full.
func (r *Ring) Append(entry LogEntry) {
	r.entries = append(r.entries, entry)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
}

// Len returns the number of retained entries.
func (r *Ring) Len() int {
	return len(r.entries)
}

// Snapshot returns a copy of the retained entries, oldest first. Callers may
// not mutate ring state through the returned slice.
func (r *Ring) Snapshot() []LogEntry {
	return append([]LogEntry(nil), r.entries...)
}

// SnapshotByCategory returns a copy of the retained entries matching the
// given category, oldest first. An empty category matches everything.
func (r *Ring) SnapshotByCategory(category Category) []LogEntry {
	if category == "" {
		return r.Snapshot()
	}
	out := make([]LogEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.Category == category {
			out = append(out, entry)
		}
	}
	return out
}
