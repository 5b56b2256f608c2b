package cooking

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrTimerNotFound   = errors.New("no timer for this step")
	ErrTimerNotRunning = errors.New("timer is not running")
	ErrTimerNotPaused  = errors.New("timer is not paused")
)

type TimerState string

const (
	TimerIdle     TimerState = "idle"
	TimerRunning  TimerState = "running"
	TimerPaused   TimerState = "paused"
	TimerFinished TimerState = "finished"
)

type TimerSnapshot struct {
	SessionID string        `json:"session_id"`
	Step      int           `json:"step"`
	State     TimerState    `json:"state"`
	Duration  time.Duration `json:"duration"`
	Remaining time.Duration `json:"remaining"`
}

type timerKey struct {
	session string
	step    int
}

type timer struct {
	state     TimerState
	duration  time.Duration
	remaining time.Duration
	cancel    chan struct{}
}

// Registry runs countdown timers keyed by (session, step). Each running
// timer owns one goroutine that decrements once per tick; hitting zero
// flips the timer to finished and fires the notifier exactly once.
type Registry struct {
	mu       sync.Mutex
	timers   map[timerKey]*timer
	tick     time.Duration
	notifier Notifier
}

// NewRegistry ticks every second. tick is injectable for tests.
func NewRegistry(notifier Notifier, tick time.Duration) *Registry {
	if tick <= 0 {
		tick = time.Second
	}
	return &Registry{
		timers:   make(map[timerKey]*timer),
		tick:     tick,
		notifier: notifier,
	}
}

// Start begins (or restarts) the countdown for a step. A timer already
// running for the step is cancelled and replaced.
func (r *Registry) Start(sessionID string, step int, d time.Duration) TimerSnapshot {
	key := timerKey{session: sessionID, step: step}

	r.mu.Lock()
	if existing, ok := r.timers[key]; ok && existing.state == TimerRunning {
		close(existing.cancel)
	}
	t := &timer{
		state:     TimerRunning,
		duration:  d,
		remaining: d,
		cancel:    make(chan struct{}),
	}
	r.timers[key] = t
	snap := r.snapshotLocked(key, t)
	r.mu.Unlock()

	go r.run(key, t)
	return snap
}

func (r *Registry) Pause(sessionID string, step int) (TimerSnapshot, error) {
	key := timerKey{session: sessionID, step: step}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[key]
	if !ok {
		return TimerSnapshot{}, ErrTimerNotFound
	}
	if t.state != TimerRunning {
		return TimerSnapshot{}, ErrTimerNotRunning
	}
	close(t.cancel)
	t.state = TimerPaused
	return r.snapshotLocked(key, t), nil
}

func (r *Registry) Resume(sessionID string, step int) (TimerSnapshot, error) {
	key := timerKey{session: sessionID, step: step}

	r.mu.Lock()
	t, ok := r.timers[key]
	if !ok {
		r.mu.Unlock()
		return TimerSnapshot{}, ErrTimerNotFound
	}
	if t.state != TimerPaused {
		r.mu.Unlock()
		return TimerSnapshot{}, ErrTimerNotPaused
	}
	t.state = TimerRunning
	t.cancel = make(chan struct{})
	snap := r.snapshotLocked(key, t)
	r.mu.Unlock()

	go r.run(key, t)
	return snap, nil
}

// Stop cancels the countdown and resets the timer to idle at its full
// duration. No notification fires.
func (r *Registry) Stop(sessionID string, step int) (TimerSnapshot, error) {
	key := timerKey{session: sessionID, step: step}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[key]
	if !ok {
		return TimerSnapshot{}, ErrTimerNotFound
	}
	if t.state == TimerRunning {
		close(t.cancel)
	}
	t.state = TimerIdle
	t.remaining = t.duration
	return r.snapshotLocked(key, t), nil
}

func (r *Registry) State(sessionID string, step int) (TimerSnapshot, error) {
	key := timerKey{session: sessionID, step: step}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[key]
	if !ok {
		return TimerSnapshot{}, ErrTimerNotFound
	}
	return r.snapshotLocked(key, t), nil
}

// StopSession cancels and forgets every timer of a session. Called when the
// cook session ends or is abandoned.
func (r *Registry) StopSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.timers {
		if key.session != sessionID {
			continue
		}
		if t.state == TimerRunning {
			close(t.cancel)
			t.state = TimerIdle
		}
		delete(r.timers, key)
	}
}

func (r *Registry) snapshotLocked(key timerKey, t *timer) TimerSnapshot {
	return TimerSnapshot{
		SessionID: key.session,
		Step:      key.step,
		State:     t.state,
		Duration:  t.duration,
		Remaining: t.remaining,
	}
}

func (r *Registry) run(key timerKey, t *timer) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			r.mu.Lock()
			if t.state != TimerRunning || r.timers[key] != t {
				r.mu.Unlock()
				return
			}
			t.remaining -= r.tick
			if t.remaining > 0 {
				r.mu.Unlock()
				continue
			}
			t.remaining = 0
			t.state = TimerFinished
			r.mu.Unlock()

			if r.notifier != nil {
				r.notifier.TimerFinished(key.session, key.step)
			}
			return
		}
	}
}
