package telemetry

import "time"

// Category classifies a telemetry event by the automation activity that produced it.
type Category string

const (
	CategoryFollow   Category = "follow"
	CategoryStory    Category = "story"
	CategoryDM       Category = "dm"
	CategoryEngage   Category = "engage"
	CategoryScan     Category = "scan"
	CategorySystem   Category = "system"
	CategoryAdvisory Category = "advisory"
)

// Outcome records how the event went.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeError   Outcome = "error"
)

// LogEntry is a single telemetry event pushed by the automation backend.
// Target may be empty for system and advisory events; Category and Outcome
// are always present on a well-formed entry.
type LogEntry struct {
	Timestamp        string   `json:"timestamp"`
	Action           string   `json:"action"`
	Target           string   `json:"target,omitempty"`
	Details          string   `json:"details"`
	Category         Category `json:"type"`
	Outcome          Outcome  `json:"outcome"`
	Probability      *int     `json:"probability,omitempty"`
	FollowbackChance *int     `json:"followbackChance,omitempty"`
}

// Valid reports whether the entry carries the mandatory fields. Frames that
// fail this check are dropped by the stream client.
func (e LogEntry) Valid() bool {
	switch e.Category {
	case CategoryFollow, CategoryStory, CategoryDM, CategoryEngage, CategoryScan, CategorySystem, CategoryAdvisory:
	default:
		return false
	}
	switch e.Outcome {
	case OutcomeSuccess, OutcomeWarning, OutcomeError:
	default:
		return false
	}
	return e.Action != ""
}

// Stamp formats a time the way the backend does for log timestamps.
func Stamp(at time.Time) string {
	return at.Format("15:04:05")
}
