package advisory

import (
	"fmt"
	"testing"
	"time"
)

func TestFireKeepsAtMostThree(t *testing.T) {
	t.Parallel()

	seq := 0
	n := NewNotifier(WithPick(func() (string, string) {
		seq++
		return fmt.Sprintf("cmd-%d", seq), "because"
	}))

	at := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		n.Fire(at.Add(time.Duration(i) * time.Minute))
	}

	snap := n.Snapshot()
	if len(snap) != Capacity {
		t.Fatalf("expected %d suggestions, got %d", Capacity, len(snap))
	}
	for i, s := range snap {
		want := fmt.Sprintf("cmd-%d", 5+i)
		if s.Text != want {
			t.Fatalf("index %d: expected %q, got %q", i, want, s.Text)
		}
	}

	latest, ok := n.Latest()
	if !ok || latest.Text != "cmd-7" {
		t.Fatalf("unexpected latest suggestion: %+v", latest)
	}
	if latest.Timestamp != "14:06:00" {
		t.Fatalf("unexpected timestamp: %q", latest.Timestamp)
	}
}

func TestClearDiscardsEverything(t *testing.T) {
	t.Parallel()

	n := NewNotifier(WithPick(func() (string, string) { return "x", "y" }))
	n.Fire(time.Now())
	n.Fire(time.Now())

	n.Clear()
	if len(n.Snapshot()) != 0 {
		t.Fatal("expected empty suggestion list after Clear")
	}
	if _, ok := n.Latest(); ok {
		t.Fatal("Latest should report nothing after Clear")
	}
}

func TestNextIntervalStaysInBounds(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	for i := 0; i < 200; i++ {
		d := n.NextInterval()
		if d < MinInterval || d >= MaxInterval {
			t.Fatalf("interval %v outside [%v, %v)", d, MinInterval, MaxInterval)
		}
	}
}

func TestInjectedJitterIsUsed(t *testing.T) {
	t.Parallel()

	n := NewNotifier(WithJitter(func() time.Duration { return 17 * time.Second }))
	if n.NextInterval() != 17*time.Second {
		t.Fatal("injected jitter not used")
	}
}
