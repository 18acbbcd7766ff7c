// Package session implements the keystroke-driven typing session engine.
package session

import (
	"math"
	"sync"
	"time"
)

// Phase is the session state machine position.
type Phase int

// Session phases. Completed is terminal until the next reset.
const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseCompleted
)

// EventKind identifies an engine notification.
type EventKind int

// The closed event set callers can subscribe to.
const (
	EventStarted EventKind = iota
	EventTick
	EventCompleted
)

// Metrics holds speed and accuracy figures for a session. Live
// metrics are rounded to whole numbers; final metrics to one decimal.
type Metrics struct {
	Errors    int
	GrossWPM  float64
	NetWPM    float64
	Accuracy  float64
	ElapsedMs int64
}

// Event is a notification emitted by the engine.
type Event struct {
	Kind    EventKind
	Metrics Metrics
}

const defaultTickInterval = 200 * time.Millisecond

// Engine computes live and final typing metrics from full-buffer
// input snapshots. One engine instance is active at a time; the
// periodic tick emitter is its only background activity and is
// canceled on reset or completion.
type Engine struct {
	mu        sync.Mutex
	now       func() time.Time
	tickEvery time.Duration
	events    chan Event

	target    []rune
	input     []rune
	startedAt time.Time
	endedAt   time.Time
	phase     Phase
	stopTick  chan struct{}
}

// New returns an idle engine with no target text.
func New() *Engine {
	return &Engine{
		now:       time.Now,
		tickEvery: defaultTickInterval,
		events:    make(chan Event, 32),
	}
}

// Events returns the subscription channel for engine notifications.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// SetTargetText resets the engine to idle with the given target.
func (e *Engine) SetTargetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.target = []rune(text)
}

// Reset returns the engine to idle, clearing buffers and timestamps
// and canceling any pending tick emission. The target text is kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
	e.input = nil
	e.startedAt = time.Time{}
	e.endedAt = time.Time{}
	e.phase = PhaseIdle
}

// Phase reports the current state machine position.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// TargetText returns the current target text.
func (e *Engine) TargetText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.target)
}

// StartedAt returns the session start time, zero while idle.
func (e *Engine) StartedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startedAt
}

// EndedAt returns the session end time, zero until completion.
func (e *Engine) EndedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endedAt
}

// ProcessInput evaluates the complete current contents of the input
// buffer, not an incremental diff. The first non-empty buffer starts
// the clock and the periodic tick emitter; a buffer matching the
// target length completes the session and emits final metrics exactly
// once. Input before a target is set, or after completion, is a no-op.
func (e *Engine) ProcessInput(buffer string) Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.target) == 0 || e.phase == PhaseCompleted {
		return Metrics{}
	}

	input := []rune(buffer)
	if e.phase == PhaseIdle {
		if len(input) == 0 {
			return Metrics{}
		}
		e.startedAt = e.now()
		e.phase = PhaseActive
		e.stopTick = make(chan struct{})
		go e.runTicker(e.stopTick)
		e.emit(Event{Kind: EventStarted})
	}

	e.input = input
	if len(input) == len(e.target) {
		e.endedAt = e.now()
		e.phase = PhaseCompleted
		if e.stopTick != nil {
			close(e.stopTick)
			e.stopTick = nil
		}
		final := e.finalLocked()
		e.emit(Event{Kind: EventCompleted, Metrics: final})
		return final
	}
	return e.liveLocked(e.now())
}

// Live returns current metrics without mutating state.
func (e *Engine) Live() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseCompleted {
		return e.finalLocked()
	}
	return e.liveLocked(e.now())
}

func (e *Engine) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(e.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.phase != PhaseActive {
				e.mu.Unlock()
				return
			}
			m := e.liveLocked(e.now())
			e.mu.Unlock()
			e.emit(Event{Kind: EventTick, Metrics: m})
		}
	}
}

// emit never blocks; stale ticks are dropped when the subscriber lags.
func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

func (e *Engine) countErrors() int {
	n := len(e.input)
	if len(e.target) < n {
		n = len(e.target)
	}
	errors := 0
	for i := 0; i < n; i++ {
		if e.input[i] != e.target[i] {
			errors++
		}
	}
	return errors
}

func (e *Engine) liveLocked(now time.Time) Metrics {
	m := e.rawMetrics(now.Sub(e.startedAt))
	m.GrossWPM = math.Round(m.GrossWPM)
	m.NetWPM = math.Round(m.NetWPM)
	m.Accuracy = math.Round(m.Accuracy)
	return m
}

// finalLocked computes metrics from the recorded end timestamp rather
// than a re-sampled clock.
func (e *Engine) finalLocked() Metrics {
	m := e.rawMetrics(e.endedAt.Sub(e.startedAt))
	m.GrossWPM = round1(m.GrossWPM)
	m.NetWPM = round1(m.NetWPM)
	m.Accuracy = round1(m.Accuracy)
	return m
}

func (e *Engine) rawMetrics(elapsed time.Duration) Metrics {
	m := Metrics{Errors: e.countErrors()}
	if e.startedAt.IsZero() {
		return m
	}
	m.ElapsedMs = elapsed.Milliseconds()

	chars := len(e.input)
	if chars > 0 {
		m.Accuracy = float64(chars-m.Errors) / float64(chars) * 100
	}
	minutes := float64(m.ElapsedMs) / 60000.0
	if minutes <= 0 {
		return m
	}
	m.GrossWPM = (float64(chars) / 5.0) / minutes
	net := float64(chars-m.Errors) / 5.0
	if net < 0 {
		net = 0
	}
	m.NetWPM = net / minutes
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
