package session

import (
	"testing"
	"time"
)

// fakeClock drives the engine deterministically in tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestEngine(target string) (*Engine, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	e := New()
	e.now = clock.now
	e.tickEvery = time.Hour // keep the ticker quiet in clock-driven tests
	e.SetTargetText(target)
	return e, clock
}

func drainEvents(e *Engine) []Event {
	var out []Event
	for {
		select {
		case ev := <-e.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestProcessInputEmptyBufferStaysIdle(t *testing.T) {
	e, _ := newTestEngine("cat")
	e.ProcessInput("")
	if got := e.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}
	if events := drainEvents(e); len(events) != 0 {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestProcessInputBeforeTargetIsNoop(t *testing.T) {
	e := New()
	e.now = (&fakeClock{}).now
	e.tickEvery = time.Hour
	m := e.ProcessInput("anything")
	if e.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", e.Phase())
	}
	if m != (Metrics{}) {
		t.Fatalf("metrics = %+v, want zero", m)
	}
}

func TestStartTransitionHappensOnce(t *testing.T) {
	e, clock := newTestEngine("cat")

	e.ProcessInput("c")
	if e.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want active", e.Phase())
	}
	startedAt := e.StartedAt()

	clock.advance(time.Second)
	e.ProcessInput("ca")
	if !e.StartedAt().Equal(startedAt) {
		t.Fatal("start timestamp moved on subsequent input")
	}

	events := drainEvents(e)
	if got := countKind(events, EventStarted); got != 1 {
		t.Fatalf("started events = %d, want 1", got)
	}
}

func TestLiveMetricsRounding(t *testing.T) {
	e, clock := newTestEngine("cat and dog")
	e.ProcessInput("c")
	clock.advance(3 * time.Second)

	m := e.ProcessInput("cot")
	if m.Errors != 1 {
		t.Errorf("errors = %d, want 1", m.Errors)
	}
	// 2 of 3 correct: 66.67 rounds to 67 live.
	if m.Accuracy != 67 {
		t.Errorf("live accuracy = %v, want 67", m.Accuracy)
	}
	// 3 chars in 3s: gross (3/5)/0.05 = 12.
	if m.GrossWPM != 12 {
		t.Errorf("live gross wpm = %v, want 12", m.GrossWPM)
	}
	if m.NetWPM != 8 {
		t.Errorf("live net wpm = %v, want 8", m.NetWPM)
	}
	if e.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want active", e.Phase())
	}
}

func TestCompletionFinalMetrics(t *testing.T) {
	e, clock := newTestEngine("cat")
	e.ProcessInput("c")
	clock.advance(3 * time.Second)
	e.ProcessInput("co")
	clock.advance(3 * time.Second)

	final := e.ProcessInput("cot")
	if e.Phase() != PhaseCompleted {
		t.Fatalf("phase = %v, want completed", e.Phase())
	}
	if final.Errors != 1 {
		t.Errorf("errors = %d, want 1", final.Errors)
	}
	if final.Accuracy != 66.7 {
		t.Errorf("final accuracy = %v, want 66.7", final.Accuracy)
	}
	// 3 chars in 6s: gross (3/5)/0.1 = 6, net (2/5)/0.1 = 4.
	if final.GrossWPM != 6 {
		t.Errorf("final gross wpm = %v, want 6", final.GrossWPM)
	}
	if final.NetWPM != 4 {
		t.Errorf("final net wpm = %v, want 4", final.NetWPM)
	}
	if final.ElapsedMs != 6000 {
		t.Errorf("elapsed = %d, want 6000", final.ElapsedMs)
	}

	events := drainEvents(e)
	if got := countKind(events, EventCompleted); got != 1 {
		t.Fatalf("completed events = %d, want 1", got)
	}
}

func TestInputAfterCompletionIsNoop(t *testing.T) {
	e, clock := newTestEngine("cat")
	e.ProcessInput("c")
	clock.advance(time.Second)
	e.ProcessInput("cat")
	drainEvents(e)

	endedAt := e.EndedAt()
	clock.advance(time.Minute)
	e.ProcessInput("dog")
	if e.Phase() != PhaseCompleted {
		t.Fatalf("phase = %v, want completed", e.Phase())
	}
	if !e.EndedAt().Equal(endedAt) {
		t.Fatal("end timestamp moved after completion")
	}
	if events := drainEvents(e); len(events) != 0 {
		t.Fatalf("events after completion: %v", events)
	}
}

func TestFinalMetricsUseRecordedEnd(t *testing.T) {
	e, clock := newTestEngine("ab")
	e.ProcessInput("a")
	clock.advance(6 * time.Second)
	e.ProcessInput("ab")

	// Advancing the clock after completion must not change final metrics.
	clock.advance(time.Hour)
	final := e.Live()
	if final.ElapsedMs != 6000 {
		t.Fatalf("elapsed = %d, want 6000", final.ElapsedMs)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	e, clock := newTestEngine("cat")
	e.ProcessInput("c")
	clock.advance(time.Second)
	e.Reset()

	if e.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", e.Phase())
	}
	if !e.StartedAt().IsZero() {
		t.Fatal("start timestamp survived reset")
	}
	if e.TargetText() != "cat" {
		t.Fatalf("target text = %q, want kept", e.TargetText())
	}
	// The engine is usable again after reset.
	drainEvents(e)
	e.ProcessInput("c")
	if e.Phase() != PhaseActive {
		t.Fatalf("phase after restart = %v, want active", e.Phase())
	}
}

func TestSetTargetTextResets(t *testing.T) {
	e, clock := newTestEngine("cat")
	e.ProcessInput("ca")
	clock.advance(time.Second)

	e.SetTargetText("dog days")
	if e.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", e.Phase())
	}
	if e.TargetText() != "dog days" {
		t.Fatalf("target = %q", e.TargetText())
	}
	if m := e.Live(); m.Errors != 0 {
		t.Fatalf("stale input survived retarget: %+v", m)
	}
}

func TestAccuracyZeroForEmptyBuffer(t *testing.T) {
	e, _ := newTestEngine("cat")
	e.ProcessInput("c")
	// Full-buffer snapshot shrank back to empty, e.g. after backspace.
	m := e.ProcessInput("")
	if m.Accuracy != 0 {
		t.Fatalf("accuracy for empty buffer = %v, want 0", m.Accuracy)
	}
}

func TestTickEmission(t *testing.T) {
	e := New()
	e.tickEvery = 5 * time.Millisecond
	e.SetTargetText("slow and steady wins")
	e.ProcessInput("s")

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-e.Events():
			if ev.Kind == EventTick {
				e.Reset()
				return
			}
		case <-deadline:
			t.Fatal("no tick emitted while active")
		}
	}
}

func TestTicksStopAfterReset(t *testing.T) {
	e := New()
	e.tickEvery = 5 * time.Millisecond
	e.SetTargetText("slow and steady wins")
	e.ProcessInput("s")
	time.Sleep(20 * time.Millisecond)
	e.Reset()

	// Allow an in-flight tick to land, then expect silence.
	time.Sleep(20 * time.Millisecond)
	drainEvents(e)
	time.Sleep(30 * time.Millisecond)
	if events := drainEvents(e); len(events) != 0 {
		t.Fatalf("ticks after reset: %v", events)
	}
}
