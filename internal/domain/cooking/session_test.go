package cooking

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager(NewRegistry(nil, 5*time.Millisecond))
}

func TestStartIsIdempotentPerUserRecipe(t *testing.T) {
	m := newTestManager()

	first := m.Start("u1", "r1", 3)
	if _, err := m.Toggle(first.SessionID, "u1", 1); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	again := m.Start("u1", "r1", 3)
	if again.SessionID != first.SessionID {
		t.Error("second start created a new session")
	}
	if again.CompletedSteps != 1 {
		t.Errorf("progress lost on re-start: %d completed", again.CompletedSteps)
	}

	other := m.Start("u2", "r1", 3)
	if other.SessionID == first.SessionID {
		t.Error("sessions shared across users")
	}
}

func TestToggleProgress(t *testing.T) {
	m := newTestManager()
	s := m.Start("u1", "r1", 4)

	p, err := m.Toggle(s.SessionID, "u1", 2)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if p.CompletedSteps != 1 || p.Percent != 25 {
		t.Errorf("progress = %d steps %.0f%%, want 1 step 25%%", p.CompletedSteps, p.Percent)
	}

	p, err = m.Toggle(s.SessionID, "u1", 2)
	if err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if p.CompletedSteps != 0 || p.Percent != 0 {
		t.Errorf("progress after untoggle = %d steps %.0f%%", p.CompletedSteps, p.Percent)
	}
}

func TestToggleOutOfRange(t *testing.T) {
	m := newTestManager()
	s := m.Start("u1", "r1", 2)

	for _, step := range []int{0, 3, -1} {
		if _, err := m.Toggle(s.SessionID, "u1", step); !errors.Is(err, ErrStepOutOfRange) {
			t.Errorf("step %d: err = %v, want ErrStepOutOfRange", step, err)
		}
	}
}

func TestCelebrationFiresExactlyOnce(t *testing.T) {
	m := newTestManager()
	s := m.Start("u1", "r1", 2)

	p, _ := m.Toggle(s.SessionID, "u1", 1)
	if p.Celebrate {
		t.Error("celebrated before completion")
	}
	p, _ = m.Toggle(s.SessionID, "u1", 2)
	if !p.Celebrate {
		t.Error("no celebration at 100%")
	}

	// Untoggle and re-complete: still a one-time event for the session.
	if _, err := m.Toggle(s.SessionID, "u1", 1); err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	p, _ = m.Toggle(s.SessionID, "u1", 1)
	if p.Celebrate {
		t.Error("celebration fired twice in one session")
	}
	if p.Percent != 100 {
		t.Errorf("percent = %.0f, want 100", p.Percent)
	}
}

func TestZeroStepsNeverCelebrates(t *testing.T) {
	m := newTestManager()
	s := m.Start("u1", "r1", 0)

	p, err := m.Get(s.SessionID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Celebrate || p.Percent != 0 {
		t.Errorf("zero-step session = %+v", p)
	}
	if _, err := m.Toggle(s.SessionID, "u1", 1); !errors.Is(err, ErrStepOutOfRange) {
		t.Errorf("toggle on zero steps: %v", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	m := newTestManager()
	s := m.Start("u1", "r1", 2)

	if _, err := m.Get(s.SessionID, "u2"); !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("get: %v, want ErrNotSessionOwner", err)
	}
	if _, err := m.Toggle(s.SessionID, "u2", 1); !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("toggle: %v, want ErrNotSessionOwner", err)
	}
	if err := m.End(s.SessionID, "u2"); !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("end: %v, want ErrNotSessionOwner", err)
	}
}

func TestEndStopsTimersAndForgetsSession(t *testing.T) {
	reg := NewRegistry(nil, 5*time.Millisecond)
	m := NewManager(reg)
	s := m.Start("u1", "r1", 3)

	if _, err := m.StartTimer(s.SessionID, "u1", 1, time.Hour); err != nil {
		t.Fatalf("start timer: %v", err)
	}

	if err := m.End(s.SessionID, "u1"); err != nil {
		t.Fatalf("end: %v", err)
	}

	if _, err := m.Get(s.SessionID, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("get after end: %v, want ErrSessionNotFound", err)
	}
	if _, err := reg.State(s.SessionID, 1); !errors.Is(err, ErrTimerNotFound) {
		t.Errorf("timer survived session end: %v", err)
	}

	// A fresh session for the same user and recipe starts clean.
	fresh := m.Start("u1", "r1", 3)
	if fresh.SessionID == s.SessionID || fresh.CompletedSteps != 0 {
		t.Errorf("fresh session = %+v", fresh)
	}
}

func TestTimerRequiresValidStep(t *testing.T) {
	m := newTestManager()
	s := m.Start("u1", "r1", 2)

	if _, err := m.StartTimer(s.SessionID, "u1", 5, time.Minute); !errors.Is(err, ErrStepOutOfRange) {
		t.Errorf("err = %v, want ErrStepOutOfRange", err)
	}
	if _, err := m.StartTimer("missing", "u1", 1, time.Minute); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
