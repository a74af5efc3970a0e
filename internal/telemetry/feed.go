package telemetry

import (
	"time"
)

// ReconnectDelay is the fixed wait between subscription attempts after the
// stream drops. The backend retries forever at this interval; there is no
// backoff growth and no retry ceiling.
const ReconnectDelay = 5 * time.Second

// BacklogLimit bounds the initial history fetch issued before streaming starts.
const BacklogLimit = 50

// BacklogVariant tags the outcome of the initial backlog fetch.
type BacklogVariant int

const (
	// BacklogOK means the backend returned real history.
	BacklogOK BacklogVariant = iota
	// BacklogDegraded means the fetch failed and a synthetic diagnostic
	// entry stands in for the history.
	BacklogDegraded
)

// BacklogResult is the tagged outcome of the one-shot backlog fetch. A failed
// fetch never propagates an error to the feed; it degrades instead.
type BacklogResult struct {
	Variant BacklogVariant
	Entries []LogEntry
	Reason  error
}

// DegradedBacklog builds the fallback result for an unreachable backend:
// a single system/warning entry announcing offline mode.
func DegradedBacklog(reason error, at time.Time) BacklogResult {
	detail := "Operating on local telemetry only"
	if reason != nil {
		detail = "Operating on local telemetry only: " + reason.Error()
	}
	return BacklogResult{
		Variant: BacklogDegraded,
		Entries: []LogEntry{{
			Timestamp: Stamp(at),
			Action:    "[SYSTEM] Backend unreachable",
			Details:   detail,
			Category:  CategorySystem,
			Outcome:   OutcomeWarning,
		}},
		Reason: reason,
	}
}

// Feed owns the telemetry ring buffer and the connection flag. It is a pure
// state machine: the Apply methods are the only mutation paths, and they are
// invoked from a single goroutine (the UI event loop).
type Feed struct {
	ring      *Ring
	connected bool
	degraded  bool
	dropped   int
}

// NewFeed creates a feed with the standard ring capacity.
func NewFeed() *Feed {
	return &Feed{ring: NewRing(RingCapacity)}
}

// ApplyBacklog seeds the ring from the initial fetch result.
func (f *Feed) ApplyBacklog(result BacklogResult) {
	f.degraded = result.Variant == BacklogDegraded
	for _, entry := range result.Entries {
		f.ring.Append(entry)
	}
}

// ApplyEvent appends one live entry. Invalid entries are counted and dropped;
// they never disturb the ring.
func (f *Feed) ApplyEvent(entry LogEntry) {
	if !entry.Valid() {
		f.dropped++
		return
	}
	f.ring.Append(entry)
}

// ApplyConnect marks the subscription live.
func (f *Feed) ApplyConnect() {
	f.connected = true
	f.degraded = false
}

// ApplyDisconnect marks the subscription lost. Buffer contents are untouched.
func (f *Feed) ApplyDisconnect() {
	f.connected = false
}

// Connected reports whether the push subscription is currently live. The flag
// is presentation state only; buffer correctness does not depend on it.
func (f *Feed) Connected() bool { return f.connected }

// Degraded reports whether the feed is running on synthetic fallback history.
func (f *Feed) Degraded() bool { return f.degraded }

// Dropped returns the number of invalid entries discarded so far.
func (f *Feed) Dropped() int { return f.dropped }

// Len returns the number of buffered entries.
func (f *Feed) Len() int { return f.ring.Len() }

// Snapshot returns the buffered entries, oldest first.
func (f *Feed) Snapshot() []LogEntry { return f.ring.Snapshot() }

// SnapshotByCategory returns the buffered entries for one category.
func (f *Feed) SnapshotByCategory(category Category) []LogEntry {
	return f.ring.SnapshotByCategory(category)
}
