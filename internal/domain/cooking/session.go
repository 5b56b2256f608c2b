package cooking

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("cook session not found")
	ErrNotSessionOwner = errors.New("this cook session belongs to another user")
	ErrStepOutOfRange  = errors.New("step number is out of range for this recipe")
)

type session struct {
	id         string
	userID     string
	recipeID   string
	totalSteps int
	startedAt  time.Time
	completed  map[int]bool
	celebrated bool
}

// Progress is one session's state as reported to the client. Celebrate is
// true on exactly one response per session: the toggle that first reaches
// full completion.
type Progress struct {
	SessionID      string    `json:"session_id"`
	RecipeID       string    `json:"recipe_id"`
	TotalSteps     int       `json:"total_steps"`
	CompletedSteps int       `json:"completed_steps"`
	Completed      []int     `json:"completed"`
	Percent        float64   `json:"percent"`
	Celebrate      bool      `json:"celebrate"`
	StartedAt      time.Time `json:"started_at"`
}

// Manager tracks in-flight cook sessions, one per user and recipe, entirely
// in memory. Sessions are ephemeral; a restart loses them, which matches
// their lifetime in the kitchen.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	byOwner  map[string]string // userID|recipeID -> session id
	timers   *Registry
}

func NewManager(timers *Registry) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		byOwner:  make(map[string]string),
		timers:   timers,
	}
}

// Start opens a cook session, or returns the user's existing session for the
// recipe so a reopened tab resumes instead of resetting progress.
func (m *Manager) Start(userID, recipeID string, totalSteps int) Progress {
	m.mu.Lock()
	defer m.mu.Unlock()

	ownerKey := userID + "|" + recipeID
	if id, ok := m.byOwner[ownerKey]; ok {
		if s, ok := m.sessions[id]; ok {
			return m.progressLocked(s, false)
		}
	}

	s := &session{
		id:         uuid.NewString(),
		userID:     userID,
		recipeID:   recipeID,
		totalSteps: totalSteps,
		startedAt:  time.Now().UTC(),
		completed:  make(map[int]bool),
	}
	m.sessions[s.id] = s
	m.byOwner[ownerKey] = s.id
	return m.progressLocked(s, false)
}

func (m *Manager) Get(sessionID, userID string) (Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.ownedLocked(sessionID, userID)
	if err != nil {
		return Progress{}, err
	}
	return m.progressLocked(s, false), nil
}

// Toggle flips a step's completed state. The celebration fires on the toggle
// that first brings the session to 100% and never again within the session,
// even if steps are unchecked and rechecked afterwards. A session with zero
// steps never celebrates.
func (m *Manager) Toggle(sessionID, userID string, step int) (Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.ownedLocked(sessionID, userID)
	if err != nil {
		return Progress{}, err
	}
	if step < 1 || step > s.totalSteps {
		return Progress{}, ErrStepOutOfRange
	}

	if s.completed[step] {
		delete(s.completed, step)
	} else {
		s.completed[step] = true
	}

	celebrate := false
	if s.totalSteps > 0 && len(s.completed) == s.totalSteps && !s.celebrated {
		s.celebrated = true
		celebrate = true
	}
	return m.progressLocked(s, celebrate), nil
}

// End closes the session and stops every timer it owns.
func (m *Manager) End(sessionID, userID string) error {
	m.mu.Lock()
	s, err := m.ownedLocked(sessionID, userID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	delete(m.sessions, s.id)
	delete(m.byOwner, s.userID+"|"+s.recipeID)
	m.mu.Unlock()

	if m.timers != nil {
		m.timers.StopSession(sessionID)
	}
	return nil
}

// StartTimer runs the countdown for one step of the session.
func (m *Manager) StartTimer(sessionID, userID string, step int, d time.Duration) (TimerSnapshot, error) {
	if err := m.checkStep(sessionID, userID, step); err != nil {
		return TimerSnapshot{}, err
	}
	return m.timers.Start(sessionID, step, d), nil
}

func (m *Manager) PauseTimer(sessionID, userID string, step int) (TimerSnapshot, error) {
	if err := m.checkStep(sessionID, userID, step); err != nil {
		return TimerSnapshot{}, err
	}
	return m.timers.Pause(sessionID, step)
}

func (m *Manager) ResumeTimer(sessionID, userID string, step int) (TimerSnapshot, error) {
	if err := m.checkStep(sessionID, userID, step); err != nil {
		return TimerSnapshot{}, err
	}
	return m.timers.Resume(sessionID, step)
}

func (m *Manager) StopTimer(sessionID, userID string, step int) (TimerSnapshot, error) {
	if err := m.checkStep(sessionID, userID, step); err != nil {
		return TimerSnapshot{}, err
	}
	return m.timers.Stop(sessionID, step)
}

func (m *Manager) TimerState(sessionID, userID string, step int) (TimerSnapshot, error) {
	if err := m.checkStep(sessionID, userID, step); err != nil {
		return TimerSnapshot{}, err
	}
	return m.timers.State(sessionID, step)
}

func (m *Manager) checkStep(sessionID, userID string, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.ownedLocked(sessionID, userID)
	if err != nil {
		return err
	}
	if step < 1 || step > s.totalSteps {
		return ErrStepOutOfRange
	}
	return nil
}

func (m *Manager) ownedLocked(sessionID, userID string) (*session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.userID != userID {
		return nil, ErrNotSessionOwner
	}
	return s, nil
}

func (m *Manager) progressLocked(s *session, celebrate bool) Progress {
	completed := make([]int, 0, len(s.completed))
	for step := range s.completed {
		completed = append(completed, step)
	}
	sort.Ints(completed)

	percent := 0.0
	if s.totalSteps > 0 {
		percent = float64(len(s.completed)) / float64(s.totalSteps) * 100
	}
	return Progress{
		SessionID:      s.id,
		RecipeID:       s.recipeID,
		TotalSteps:     s.totalSteps,
		CompletedSteps: len(s.completed),
		Completed:      completed,
		Percent:        percent,
		Celebrate:      celebrate,
		StartedAt:      s.startedAt,
	}
}
