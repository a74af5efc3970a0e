package console

import "strings"

// Vocabulary is the fixed set of canonical command strings offered by
// autocomplete and the quick-command list, in display order.
var Vocabulary = []string{
	"scan #photography", "scan #streetphotography", "scan #filmmaking",
	"follow @target", "follow batch", "follow priority",
	"status all", "status targets", "status campaigns",
	"pause ops", "resume ops", "pause campaign",
	"reflex update", "reflex status", "stanley report",
}

// maxSuggestions bounds the autocomplete dropdown.
const maxSuggestions = 5

// Console owns the operator-visible command state: input text, the
// idle/executing flag, history browsing position and the echo history.
// It has exactly one writer (the UI event loop).
type Console struct {
	input        string
	executing    bool
	history      *History
	historyIndex int // -1 when not browsing
}

// New creates an idle console with an empty history.
func New() *Console {
	return &Console{history: NewHistory(), historyIndex: -1}
}

// SeedDefaults preloads the echo history with the canned session opener,
// oldest first.
func (c *Console) SeedDefaults() {
	c.history.Append(Command{
		Input:     "status targets",
		Output:    "Active: 3, Queued: 28, Completed: 15",
		Timestamp: "14:30:45",
		Success:   true,
	})
	c.history.Append(Command{
		Input:     "scan @filmmakers",
		Output:    "Initiated scan on @filmmakers hashtag. Found 23 targets.",
		Timestamp: "14:32:18",
		Success:   true,
	})
}

// Input returns the current input text.
func (c *Console) Input() string { return c.input }

// SetInput replaces the input text and exits history browsing. Used by quick
// commands and advisory acceptance as well as direct edits.
func (c *Console) SetInput(text string) {
	c.input = text
	c.historyIndex = -1
}

// Executing reports whether a dispatch is in flight.
func (c *Console) Executing() bool { return c.executing }

// History exposes the echo history for rendering. Readers must treat the
// snapshots as immutable.
func (c *Console) History() *History { return c.history }

// HistoryIndex returns the current browsing offset, or -1 when not browsing.
func (c *Console) HistoryIndex() int { return c.historyIndex }

// Begin attempts the idle -> executing transition for the given input.
// It returns false (and changes nothing) on empty input or when a dispatch
// is already in flight.
func (c *Console) Begin(raw string) bool {
	if c.executing || strings.TrimSpace(raw) == "" {
		return false
	}
	c.executing = true
	c.historyIndex = -1
	return true
}

// Finish completes the executing -> idle transition: the echo record is
// appended and the input cleared regardless of outcome.
func (c *Console) Finish(cmd Command) {
	c.history.Append(cmd)
	c.input = ""
	c.executing = false
	c.historyIndex = -1
}

// Prev walks one step further back in history. Browsing starts at the most
// recent entry; stepping past the oldest is a no-op. Navigation is ignored
// while executing.
func (c *Console) Prev() {
	if c.executing || c.history.Len() == 0 {
		return
	}
	next := c.historyIndex + 1
	cmd, ok := c.history.At(next)
	if !ok {
		return
	}
	c.historyIndex = next
	c.input = cmd.Input
}

// Next walks one step toward the newest entry. Stepping past the newest
// clears the input and exits browsing mode.
func (c *Console) Next() {
	if c.executing || c.historyIndex == -1 {
		return
	}
	next := c.historyIndex - 1
	if next < 0 {
		c.historyIndex = -1
		c.input = ""
		return
	}
	cmd, ok := c.history.At(next)
	if !ok {
		return
	}
	c.historyIndex = next
	c.input = cmd.Input
}

// Suggest returns up to five vocabulary entries that case-insensitively
// prefix-match the input, in vocabulary order, excluding an exact match.
// Empty input yields nothing.
func Suggest(input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	lower := strings.ToLower(trimmed)

	var out []string
	for _, cmd := range Vocabulary {
		if !strings.HasPrefix(strings.ToLower(cmd), lower) {
			continue
		}
		if strings.EqualFold(cmd, trimmed) {
			continue
		}
		out = append(out, cmd)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// Complete applies Tab completion: the first suggestion replaces the input
// verbatim. It returns false when there is nothing to complete.
func (c *Console) Complete() bool {
	if c.executing {
		return false
	}
	suggestions := Suggest(c.input)
	if len(suggestions) == 0 {
		return false
	}
	c.SetInput(suggestions[0])
	return true
}
