package console

// HistoryCapacity bounds the command echo history.
const HistoryCapacity = 20

// Command is the echo record of one executed operator command. Records are
// immutable once appended.
type Command struct {
	Input     string
	Output    string
	Timestamp string
	Success   bool
}

// History is the bounded, append-only command sequence. Navigation addresses
// it from the most recent entry: offset 0 is the newest command.
type History struct {
	commands []Command
	capacity int
}

// NewHistory creates a history with the standard capacity.
func NewHistory() *History {
	return &History{capacity: HistoryCapacity}
}

// Append records an executed command, evicting the oldest when full.
func (h *History) Append(cmd Command) {
	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.capacity {
		h.commands = h.commands[len(h.commands)-h.capacity:]
	}
}

// Len returns the number of retained commands.
func (h *History) Len() int {
	return len(h.commands)
}

// At returns the command at the given offset from the most recent entry.
// Offset 0 is the newest. The second result is false when the offset is out
// of range.
func (h *History) At(offset int) (Command, bool) {
	if offset < 0 || offset >= len(h.commands) {
		return Command{}, false
	}
	return h.commands[len(h.commands)-1-offset], true
}

// Snapshot returns the retained commands, oldest first.
func (h *History) Snapshot() []Command {
	return append([]Command(nil), h.commands...)
}
