package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JulienEnigma/instacommand/internal/api"
)

// ActionKind identifies which remote action a command routes to.
type ActionKind int

const (
	ActionScan ActionKind = iota
	ActionFollow
	ActionPause
	ActionResume
	ActionStatus
	ActionAdvisory
	ActionGenerate
)

// Action is the parsed form of one operator command.
type Action struct {
	Kind ActionKind
	// Arg holds the scan tag or follow target where applicable, and the raw
	// input for advisory and generate actions.
	Arg string
}

// Remote is the slice of the backend client the dispatcher needs. *api.Client
// satisfies it.
type Remote interface {
	ScanHashtag(ctx context.Context, tag string, limit int) (api.ScanResult, error)
	FollowUser(ctx context.Context, username string) (api.ActionResult, error)
	PauseOperations(ctx context.Context) (api.ActionResult, error)
	ResumeOperations(ctx context.Context) (api.ActionResult, error)
	SystemStatus(ctx context.Context) (api.StatusResult, error)
	AdvisoryInsight(ctx context.Context, consoleContext string) (api.AdvisoryMessage, error)
	Generate(ctx context.Context, prompt string, maxLength int) (api.GenerateResult, error)
}

var _ Remote = (*api.Client)(nil)

// Dispatcher routes free-text operator input to remote actions and normalizes
// the result into an echo record. It issues exactly one remote call per
// execution and never propagates an error to the caller.
type Dispatcher struct {
	remote Remote
	now    func() time.Time
}

// NewDispatcher creates a dispatcher over the given backend. The clock is
// injectable for tests via WithClock.
func NewDispatcher(remote Remote) *Dispatcher {
	return &Dispatcher{remote: remote, now: time.Now}
}

// WithClock overrides the dispatcher's clock.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Route parses raw input into an action. Matching is case-insensitive and
// evaluated in fixed priority order; anything unrecognized falls back to a
// generic completion request.
func Route(raw string) Action {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "scan #"), strings.HasPrefix(lower, "scan @"):
		return Action{Kind: ActionScan, Arg: strings.TrimSpace(trimmed[len("scan "):])}
	case strings.HasPrefix(lower, "follow @"):
		return Action{Kind: ActionFollow, Arg: strings.TrimSpace(trimmed[len("follow "):])}
	case lower == "pause ops":
		return Action{Kind: ActionPause}
	case lower == "resume ops":
		return Action{Kind: ActionResume}
	case lower == "status all":
		return Action{Kind: ActionStatus}
	case strings.HasPrefix(lower, "stanley"):
		return Action{Kind: ActionAdvisory, Arg: trimmed}
	default:
		return Action{Kind: ActionGenerate, Arg: trimmed}
	}
}

// Execute runs one command end to end: parse, exactly one remote call,
// normalize. Remote failures produce success=false with an "Error: ..."
// output instead of an error return.
func (d *Dispatcher) Execute(ctx context.Context, raw string) Command {
	action := Route(raw)
	output, err := d.invoke(ctx, action)

	cmd := Command{
		Input:     strings.TrimSpace(raw),
		Timestamp: d.now().Format("15:04:05"),
		Success:   err == nil,
		Output:    output,
	}
	if err != nil {
		cmd.Output = "Error: " + err.Error()
	}
	return cmd
}

func (d *Dispatcher) invoke(ctx context.Context, action Action) (string, error) {
	switch action.Kind {
	case ActionScan:
		result, err := d.remote.ScanHashtag(ctx, action.Arg, 20)
		if err != nil {
			return "", err
		}
		if result.Message != "" {
			return result.Message, nil
		}
		return fmt.Sprintf("Scan complete: %d targets found", result.TargetsFound), nil

	case ActionFollow:
		result, err := d.remote.FollowUser(ctx, action.Arg)
		if err != nil {
			return "", err
		}
		if !result.Success {
			return "", fmt.Errorf("follow rejected: %s", fallbackText(result.Message, "backend declined"))
		}
		return fallbackText(result.Message, "Follow queued: "+action.Arg), nil

	case ActionPause:
		result, err := d.remote.PauseOperations(ctx)
		if err != nil {
			return "", err
		}
		if !result.Success {
			return "", fmt.Errorf("pause rejected: %s", fallbackText(result.Message, "backend declined"))
		}
		return "Operations paused", nil

	case ActionResume:
		result, err := d.remote.ResumeOperations(ctx)
		if err != nil {
			return "", err
		}
		if !result.Success {
			return "", fmt.Errorf("resume rejected: %s", fallbackText(result.Message, "backend declined"))
		}
		return "Operations resumed", nil

	case ActionStatus:
		result, err := d.remote.SystemStatus(ctx)
		if err != nil {
			return "", err
		}
		return fallbackText(result.Message, "No status available"), nil

	case ActionAdvisory:
		result, err := d.remote.AdvisoryInsight(ctx, action.Arg)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(result.Message) == "" {
			return "", fmt.Errorf("empty advisory response")
		}
		return "[Stanley] " + result.Message, nil

	default:
		result, err := d.remote.Generate(ctx, action.Arg, 150)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(result.Response) == "" {
			return "", fmt.Errorf("empty completion response")
		}
		return result.Response, nil
	}
}

func fallbackText(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}
