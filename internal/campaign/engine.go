package campaign

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// TickInterval is the fixed cadence of campaign progress simulation.
const TickInterval = 3 * time.Second

// Status is a campaign lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusArchived  Status = "archived"
)

// Campaign is one tracked growth operation. Progress is monotone while
// active; current never exceeds target; completion sets progress to exactly
// 100 and current to exactly target, with a verdict drawn from the fixed
// template pool.
type Campaign struct {
	ID          string
	Name        string
	Codename    string
	Status      Status
	Progress    float64
	Target      int
	Current     int
	Description string
	CompletedAt string
	Verdict     string
}

var verdictPool = []string{
	"Excellent follow-back rate. Recommend expanding target pool.",
	"Great conversion. Suggest reusing comment strategy.",
	"Strong engagement. Consider similar demographics.",
	"Outstanding results. Strategy validated for replication.",
}

// VerdictPool returns a copy of the completion verdict templates.
func VerdictPool() []string {
	return append([]string(nil), verdictPool...)
}

// Engine owns the campaign collection and drives the per-tick progress
// simulation. The increment source and verdict picker are injectable so
// tests can substitute deterministic choices. The engine is single-writer:
// all mutation goes through Tick and the operator transition methods.
type Engine struct {
	campaigns []Campaign
	increment func() float64
	verdict   func() string
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithIncrement overrides the per-tick progress increment source.
func WithIncrement(increment func() float64) Option {
	return func(e *Engine) { e.increment = increment }
}

// WithVerdict overrides the completion verdict picker.
func WithVerdict(verdict func() string) Option {
	return func(e *Engine) { e.verdict = verdict }
}

// WithClock overrides the engine's clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with the default randomized increment
// (uniform in [0,2) percentage points) and verdict selection.
func NewEngine(opts ...Option) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	e := &Engine{
		increment: func() float64 { return rng.Float64() * 2 },
		verdict:   func() string { return verdictPool[rng.Intn(len(verdictPool))] },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Seed replaces the collection. Intended for startup only.
func (e *Engine) Seed(campaigns []Campaign) {
	e.campaigns = append([]Campaign(nil), campaigns...)
}

// SeedDefaults loads the stock demo campaigns.
func (e *Engine) SeedDefaults() {
	e.Seed([]Campaign{
		{
			ID:          "1",
			Name:        "Operation: Ghost Reach",
			Codename:    "GHOST_REACH",
			Status:      StatusActive,
			Progress:    67,
			Target:      100,
			Current:     67,
			Description: "100 new followers from film niche",
		},
		{
			ID:          "2",
			Name:        "Operation: Shadow Network",
			Codename:    "SHADOW_NET",
			Status:      StatusScheduled,
			Progress:    0,
			Target:      50,
			Current:     0,
			Description: "High-value photographer targets",
		},
		{
			ID:          "3",
			Name:        "Operation: Street Vision",
			Codename:    "STREET_VISION",
			Status:      StatusCompleted,
			Progress:    100,
			Target:      75,
			Current:     75,
			Description: "Urban photographers engagement",
			CompletedAt: "14:23:12",
			Verdict:     "Great conversion. Suggest reusing comment strategy.",
		},
	})
}

// Tick advances every active campaign by one bounded random increment.
// A campaign crossing 100 completes in the same tick: progress clamped to
// exactly 100, current set to exactly target, completion time and verdict
// recorded. At most one mutation applies per campaign per tick.
func (e *Engine) Tick() {
	at := e.now()
	for i := range e.campaigns {
		c := &e.campaigns[i]
		if c.Status != StatusActive {
			continue
		}

		next := c.Progress + e.increment()
		if next >= 100 {
			c.Progress = 100
			c.Current = c.Target
			c.Status = StatusCompleted
			c.CompletedAt = at.Format("15:04:05")
			c.Verdict = e.verdict()
			continue
		}
		c.Progress = next
		c.Current = int(math.Floor(next / 100 * float64(c.Target)))
	}
}

// Activate moves a scheduled campaign to active.
func (e *Engine) Activate(id string) bool {
	c := e.find(id)
	if c == nil || c.Status != StatusScheduled {
		return false
	}
	c.Status = StatusActive
	return true
}

// PauseToggle flips a campaign between active and paused. Paused campaigns
// receive no tick increments.
func (e *Engine) PauseToggle(id string) bool {
	c := e.find(id)
	if c == nil {
		return false
	}
	switch c.Status {
	case StatusActive:
		c.Status = StatusPaused
	case StatusPaused:
		c.Status = StatusActive
	default:
		return false
	}
	return true
}

// Archive retires a campaign. Terminal: archived campaigns stay in the
// collection but leave the active view. Archiving an archived campaign is
// a no-op.
func (e *Engine) Archive(id string) bool {
	c := e.find(id)
	if c == nil || c.Status == StatusArchived {
		return false
	}
	c.Status = StatusArchived
	return true
}

// Duplicate creates a fresh scheduled copy of a campaign: new identifier,
// zeroed progress, cleared completion fields. The source is untouched.
// It returns the new campaign's id.
func (e *Engine) Duplicate(id string) (string, bool) {
	src := e.find(id)
	if src == nil {
		return "", false
	}
	dup := *src
	dup.ID = uuid.NewString()
	dup.Name = src.Name + " (Copy)"
	dup.Codename = src.Codename + "_COPY"
	dup.Status = StatusScheduled
	dup.Progress = 0
	dup.Current = 0
	dup.CompletedAt = ""
	dup.Verdict = ""
	e.campaigns = append(e.campaigns, dup)
	return dup.ID, true
}

func (e *Engine) find(id string) *Campaign {
	for i := range e.campaigns {
		if e.campaigns[i].ID == id {
			return &e.campaigns[i]
		}
	}
	return nil
}

// Get returns a copy of the campaign with the given id.
func (e *Engine) Get(id string) (Campaign, bool) {
	c := e.find(id)
	if c == nil {
		return Campaign{}, false
	}
	return *c, true
}

// Active returns a snapshot of every non-archived campaign, in insertion
// order.
func (e *Engine) Active() []Campaign {
	out := make([]Campaign, 0, len(e.campaigns))
	for _, c := range e.campaigns {
		if c.Status != StatusArchived {
			out = append(out, c)
		}
	}
	return out
}

// Archived returns a snapshot of the archived campaigns.
func (e *Engine) Archived() []Campaign {
	var out []Campaign
	for _, c := range e.campaigns {
		if c.Status == StatusArchived {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the total number of campaigns, archived included.
func (e *Engine) Len() int {
	return len(e.campaigns)
}
