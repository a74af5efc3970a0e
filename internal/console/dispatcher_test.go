package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JulienEnigma/instacommand/internal/api"
)

type fakeRemote struct {
	calls []string

	scanResult     api.ScanResult
	followResult   api.ActionResult
	pauseResult    api.ActionResult
	resumeResult   api.ActionResult
	statusResult   api.StatusResult
	advisoryResult api.AdvisoryMessage
	generateResult api.GenerateResult
	err            error
}

func (f *fakeRemote) ScanHashtag(_ context.Context, tag string, _ int) (api.ScanResult, error) {
	f.calls = append(f.calls, "scan:"+tag)
	return f.scanResult, f.err
}

func (f *fakeRemote) FollowUser(_ context.Context, username string) (api.ActionResult, error) {
	f.calls = append(f.calls, "follow:"+username)
	return f.followResult, f.err
}

func (f *fakeRemote) PauseOperations(context.Context) (api.ActionResult, error) {
	f.calls = append(f.calls, "pause")
	return f.pauseResult, f.err
}

func (f *fakeRemote) ResumeOperations(context.Context) (api.ActionResult, error) {
	f.calls = append(f.calls, "resume")
	return f.resumeResult, f.err
}

func (f *fakeRemote) SystemStatus(context.Context) (api.StatusResult, error) {
	f.calls = append(f.calls, "status")
	return f.statusResult, f.err
}

func (f *fakeRemote) AdvisoryInsight(_ context.Context, consoleContext string) (api.AdvisoryMessage, error) {
	f.calls = append(f.calls, "advisory:"+consoleContext)
	return f.advisoryResult, f.err
}

func (f *fakeRemote) Generate(_ context.Context, prompt string, _ int) (api.GenerateResult, error) {
	f.calls = append(f.calls, "generate:"+prompt)
	return f.generateResult, f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 14, 32, 18, 0, time.UTC)
}

func TestRoutePriorityOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		kind  ActionKind
		arg   string
	}{
		{"scan #streetphotography", ActionScan, "#streetphotography"},
		{"scan @filmmakers", ActionScan, "@filmmakers"},
		{"SCAN #Tag", ActionScan, "#Tag"},
		{"follow @julien_film", ActionFollow, "@julien_film"},
		{"Follow @X", ActionFollow, "@X"},
		{"pause ops", ActionPause, ""},
		{"PAUSE OPS", ActionPause, ""},
		{"resume ops", ActionResume, ""},
		{"status all", ActionStatus, ""},
		{"stanley report", ActionAdvisory, "stanley report"},
		{"stanley", ActionAdvisory, "stanley"},
		{"scan audience patterns", ActionGenerate, "scan audience patterns"},
		{"follow batch", ActionGenerate, "follow batch"},
		{"analyze competitor posts", ActionGenerate, "analyze competitor posts"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			action := Route(tt.input)
			if action.Kind != tt.kind {
				t.Fatalf("Route(%q).Kind = %v, want %v", tt.input, action.Kind, tt.kind)
			}
			if action.Arg != tt.arg {
				t.Fatalf("Route(%q).Arg = %q, want %q", tt.input, action.Arg, tt.arg)
			}
		})
	}
}

func TestExecuteIssuesExactlyOneRemoteCall(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{
		scanResult: api.ScanResult{Message: "Found 12 new targets"},
	}
	d := NewDispatcher(remote).WithClock(fixedClock)

	cmd := d.Execute(context.Background(), "scan #streetphotography")
	if len(remote.calls) != 1 {
		t.Fatalf("expected exactly one remote call, got %v", remote.calls)
	}
	if !cmd.Success {
		t.Fatalf("expected success, got %+v", cmd)
	}
	if cmd.Output != "Found 12 new targets" {
		t.Fatalf("unexpected output: %q", cmd.Output)
	}
	if cmd.Timestamp != "14:32:18" {
		t.Fatalf("unexpected timestamp: %q", cmd.Timestamp)
	}
	if cmd.Input != "scan #streetphotography" {
		t.Fatalf("unexpected input echo: %q", cmd.Input)
	}
}

func TestExecuteNormalizesRemoteFailure(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{err: errors.New("connection refused")}
	d := NewDispatcher(remote).WithClock(fixedClock)

	cmd := d.Execute(context.Background(), "follow @ghost")
	if cmd.Success {
		t.Fatal("expected success=false on remote error")
	}
	if !strings.HasPrefix(cmd.Output, "Error: ") {
		t.Fatalf("expected Error: prefix, got %q", cmd.Output)
	}
}

func TestExecuteNormalizesBackendDecline(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{
		followResult: api.ActionResult{Success: false, Message: "rate limited"},
	}
	d := NewDispatcher(remote).WithClock(fixedClock)

	cmd := d.Execute(context.Background(), "follow @ghost")
	if cmd.Success {
		t.Fatal("expected success=false on backend decline")
	}
	if !strings.Contains(cmd.Output, "rate limited") {
		t.Fatalf("decline reason missing from output: %q", cmd.Output)
	}
}

func TestExecuteAdvisoryAndGenerate(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{
		advisoryResult: api.AdvisoryMessage{Type: "insight", Message: "Optimal window detected"},
		generateResult: api.GenerateResult{Response: "Analysis queued"},
	}
	d := NewDispatcher(remote).WithClock(fixedClock)

	advisory := d.Execute(context.Background(), "stanley report")
	if !advisory.Success || advisory.Output != "[Stanley] Optimal window detected" {
		t.Fatalf("unexpected advisory echo: %+v", advisory)
	}

	generated := d.Execute(context.Background(), "optimize my hashtags")
	if !generated.Success || generated.Output != "Analysis queued" {
		t.Fatalf("unexpected generate echo: %+v", generated)
	}
	if remote.calls[len(remote.calls)-1] != "generate:optimize my hashtags" {
		t.Fatalf("unexpected final call: %v", remote.calls)
	}
}

func TestExecuteRejectsMalformedAdvisoryResponse(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{advisoryResult: api.AdvisoryMessage{Message: "   "}}
	d := NewDispatcher(remote).WithClock(fixedClock)

	cmd := d.Execute(context.Background(), "stanley report")
	if cmd.Success {
		t.Fatal("blank advisory message must normalize to failure")
	}
	if !strings.HasPrefix(cmd.Output, "Error: ") {
		t.Fatalf("expected Error: prefix, got %q", cmd.Output)
	}
}
