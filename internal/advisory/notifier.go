package advisory

import (
	"math/rand"
	"time"
)

// Capacity bounds the retained suggestion list.
const Capacity = 3

// Interval bounds for the randomized firing cadence: uniform in [Min, Max).
const (
	MinInterval = 10 * time.Second
	MaxInterval = 25 * time.Second
)

// Suggestion is a non-binding command proposal surfaced to the operator.
// Accepting one only copies Text into the console input; nothing executes.
type Suggestion struct {
	Text      string
	Reason    string
	Timestamp string
}

// template is one entry of the fixed suggestion pool.
type template struct {
	Text   string
	Reason string
}

var pool = []template{
	{"scan #streetphotography", "Peak activity window for this niche right now"},
	{"follow @target", "High compatibility targets waiting in queue"},
	{"status all", "No status check in the last few minutes"},
	{"pause ops", "Rate limit approaching, consider a cooldown"},
	{"stanley report", "New engagement patterns ready for analysis"},
	{"scan #filmmaking", "Film community unusually active"},
}

// Notifier periodically surfaces suggestions into a bounded list. Selection
// and interval jitter are injectable so tests stay deterministic. Single
// writer: only the owning event loop calls the mutating methods.
type Notifier struct {
	suggestions []Suggestion
	pick        func() (text, reason string)
	jitter      func() time.Duration
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithPick overrides template selection.
func WithPick(pick func() (text, reason string)) Option {
	return func(n *Notifier) { n.pick = pick }
}

// WithJitter overrides the interval source.
func WithJitter(jitter func() time.Duration) Option {
	return func(n *Notifier) { n.jitter = jitter }
}

// NewNotifier creates a notifier with randomized template selection and a
// uniform [MinInterval, MaxInterval) firing cadence.
func NewNotifier(opts ...Option) *Notifier {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	n := &Notifier{
		pick: func() (string, string) {
			t := pool[rng.Intn(len(pool))]
			return t.Text, t.Reason
		},
		jitter: func() time.Duration {
			return MinInterval + time.Duration(rng.Int63n(int64(MaxInterval-MinInterval)))
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Fire appends one suggestion, evicting the oldest beyond capacity.
func (n *Notifier) Fire(at time.Time) {
	text, reason := n.pick()
	n.suggestions = append(n.suggestions, Suggestion{
		Text:      text,
		Reason:    reason,
		Timestamp: at.Format("15:04:05"),
	})
	if len(n.suggestions) > Capacity {
		n.suggestions = n.suggestions[len(n.suggestions)-Capacity:]
	}
}

// Clear discards every retained suggestion.
func (n *Notifier) Clear() {
	n.suggestions = nil
}

// Latest returns the most recent suggestion.
func (n *Notifier) Latest() (Suggestion, bool) {
	if len(n.suggestions) == 0 {
		return Suggestion{}, false
	}
	return n.suggestions[len(n.suggestions)-1], true
}

// Snapshot returns the retained suggestions, oldest first.
func (n *Notifier) Snapshot() []Suggestion {
	return append([]Suggestion(nil), n.suggestions...)
}

// NextInterval returns the wait before the next firing.
func (n *Notifier) NextInterval() time.Duration {
	return n.jitter()
}
