package campaign

import (
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 14, 32, 18, 0, time.UTC)
}

func newTestEngine(increment float64) *Engine {
	return NewEngine(
		WithIncrement(func() float64 { return increment }),
		WithVerdict(func() string { return VerdictPool()[0] }),
		WithClock(fixedClock),
	)
}

func TestTickIncreasesActiveProgressMonotonically(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1.5)
	e.Seed([]Campaign{{ID: "c1", Status: StatusActive, Progress: 10, Target: 200, Current: 20}})

	last := 10.0
	for i := 0; i < 20; i++ {
		e.Tick()
		c, _ := e.Get("c1")
		if c.Progress <= last {
			t.Fatalf("tick %d: progress not strictly increasing (%f -> %f)", i, last, c.Progress)
		}
		if c.Current > c.Target {
			t.Fatalf("tick %d: current %d exceeds target %d", i, c.Current, c.Target)
		}
		want := int((c.Progress / 100) * float64(c.Target))
		if c.Current != want {
			t.Fatalf("tick %d: current %d not derived from progress (want %d)", i, c.Current, want)
		}
		last = c.Progress
	}
}

func TestTickCompletesInASingleTick(t *testing.T) {
	t.Parallel()

	e := newTestEngine(2)
	e.Seed([]Campaign{{ID: "c1", Status: StatusActive, Progress: 99.5, Target: 100, Current: 99}})

	e.Tick()

	c, _ := e.Get("c1")
	if c.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", c.Status)
	}
	if c.Progress != 100 {
		t.Fatalf("expected progress exactly 100, got %f", c.Progress)
	}
	if c.Current != c.Target {
		t.Fatalf("expected current == target, got %d != %d", c.Current, c.Target)
	}
	if c.CompletedAt != "14:32:18" {
		t.Fatalf("unexpected completion time: %q", c.CompletedAt)
	}
	found := false
	for _, v := range VerdictPool() {
		if c.Verdict == v {
			found = true
		}
	}
	if !found {
		t.Fatalf("verdict %q not from the fixed pool", c.Verdict)
	}

	// Completed campaigns receive no further increments.
	e.Tick()
	after, _ := e.Get("c1")
	if after.Progress != 100 || after.Status != StatusCompleted {
		t.Fatalf("completed campaign mutated by later tick: %+v", after)
	}
}

func TestPausedCampaignReceivesNoIncrements(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1)
	e.Seed([]Campaign{{ID: "c1", Status: StatusActive, Progress: 40, Target: 100, Current: 40}})

	if !e.PauseToggle("c1") {
		t.Fatal("expected pause to apply")
	}
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	c, _ := e.Get("c1")
	if c.Progress != 40 {
		t.Fatalf("paused campaign progressed to %f", c.Progress)
	}

	if !e.PauseToggle("c1") {
		t.Fatal("expected resume to apply")
	}
	e.Tick()
	c, _ = e.Get("c1")
	if c.Progress != 41 {
		t.Fatalf("resumed campaign did not progress: %f", c.Progress)
	}
}

func TestPauseToggleRejectsTerminalStates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1)
	e.Seed([]Campaign{
		{ID: "done", Status: StatusCompleted, Progress: 100, Target: 10, Current: 10},
		{ID: "gone", Status: StatusArchived},
	})
	if e.PauseToggle("done") {
		t.Fatal("completed campaigns cannot be paused")
	}
	if e.PauseToggle("gone") {
		t.Fatal("archived campaigns cannot be paused")
	}
	if e.PauseToggle("missing") {
		t.Fatal("unknown ids must be rejected")
	}
}

func TestDuplicateCreatesFreshScheduledCopy(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1)
	e.Seed([]Campaign{{
		ID: "src", Name: "Operation: Street Vision", Codename: "STREET_VISION",
		Status: StatusCompleted, Progress: 100, Target: 75, Current: 75,
		CompletedAt: "14:23:12", Verdict: VerdictPool()[1],
	}})

	newID, ok := e.Duplicate("src")
	if !ok {
		t.Fatal("expected duplicate to succeed")
	}
	if newID == "src" {
		t.Fatal("duplicate must get a distinct id")
	}

	dup, _ := e.Get(newID)
	if dup.Status != StatusScheduled || dup.Progress != 0 || dup.Current != 0 {
		t.Fatalf("duplicate not reset: %+v", dup)
	}
	if dup.CompletedAt != "" || dup.Verdict != "" {
		t.Fatalf("duplicate kept completion fields: %+v", dup)
	}
	if dup.Name != "Operation: Street Vision (Copy)" || dup.Codename != "STREET_VISION_COPY" {
		t.Fatalf("unexpected duplicate naming: %q / %q", dup.Name, dup.Codename)
	}
	if dup.Target != 75 || dup.Description != "" {
		// Target carries over; description carries over too (empty here).
		t.Fatalf("unexpected duplicate carry-over: %+v", dup)
	}

	src, _ := e.Get("src")
	if src.Status != StatusCompleted || src.Progress != 100 || src.Verdict == "" {
		t.Fatalf("source mutated by duplicate: %+v", src)
	}
}

func TestArchiveExcludesFromActiveView(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1)
	e.SeedDefaults()
	total := e.Len()

	if !e.Archive("3") {
		t.Fatal("expected archive to apply")
	}
	if e.Archive("3") {
		t.Fatal("archiving twice must be a no-op")
	}

	if e.Len() != total {
		t.Fatal("archive must not physically delete campaigns")
	}
	for _, c := range e.Active() {
		if c.ID == "3" {
			t.Fatal("archived campaign still in active view")
		}
	}
	archived := e.Archived()
	if len(archived) != 1 || archived[0].ID != "3" {
		t.Fatalf("unexpected archived view: %+v", archived)
	}
}

func TestActivateOnlyFromScheduled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1)
	e.SeedDefaults()

	if !e.Activate("2") {
		t.Fatal("expected scheduled campaign to activate")
	}
	if e.Activate("2") {
		t.Fatal("activate must only apply to scheduled campaigns")
	}
	c, _ := e.Get("2")
	if c.Status != StatusActive {
		t.Fatalf("unexpected status: %s", c.Status)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	t.Parallel()

	e := newTestEngine(1)
	e.SeedDefaults()

	view := e.Active()
	view[0].Progress = 999
	c, _ := e.Get(view[0].ID)
	if c.Progress == 999 {
		t.Fatal("view mutation leaked into engine state")
	}
}
