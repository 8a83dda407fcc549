package entities

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"luastyle/internal/domain/valueobjects"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTryOnInFlight   = errors.New("a try-on is already in progress")
)

const (
	// ProgressCeiling is the highest value the heartbeat may reach before completion.
	ProgressCeiling = 98.0
	ProgressDone    = 100.0
)

// LoadingMessages rotate while a try-on is in flight.
var LoadingMessages = []string{
	"Analyzing your style...",
	"Adjusting the garment fit...",
	"Preserving your identity...",
	"Applying realistic textures...",
	"Finishing the look details...",
	"Almost there! Creating variations...",
}

type SessionID string

type SessionState string

const (
	StateIdle           SessionState = "idle"
	StateAwaitingInputs SessionState = "awaiting_inputs"
	StateReady          SessionState = "ready"
	StateInFlight       SessionState = "in_flight"
	StateSucceeded      SessionState = "succeeded"
	StateFailed         SessionState = "failed"
)

// Session is one user's try-on workspace. All methods are safe for concurrent use.
//
// The generation phase (in flight, succeeded, failed) is stored explicitly.
// Idle, awaiting inputs and ready are derived from which images are present.
// Every entry into in flight bumps the epoch, and completions or heartbeat
// ticks carrying an older epoch are ignored.
type Session struct {
	mu sync.Mutex

	id           SessionID
	assets       map[valueobjects.Role]*valueobjects.ImageData
	accessories  valueobjects.AccessorySelection
	phase        SessionState
	epoch        uint64
	cancel       context.CancelFunc
	result       *TryOnResult
	errorMessage string
	progress     float64
	messageIndex int
	createdAt    time.Time
	updatedAt    time.Time
}

func NewSession() *Session {
	now := time.Now()
	return &Session{
		id:        SessionID(uuid.NewString()),
		assets:    make(map[valueobjects.Role]*valueobjects.ImageData, len(valueobjects.Roles)),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() SessionID {
	return s.id
}

// SetAsset stores a normalized image for role, replacing any previous one.
// A nil image leaves the session untouched.
func (s *Session) SetAsset(role valueobjects.Role, img *valueobjects.ImageData) {
	if img == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets[role] = img
	s.touch()
}

func (s *Session) Asset(role valueobjects.Role) *valueobjects.ImageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[role]
}

func (s *Session) ToggleAccessory(label string) (valueobjects.AccessorySelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.accessories.Toggle(label)
	if err != nil {
		return s.accessories, err
	}
	s.accessories = next
	s.touch()
	return next, nil
}

func (s *Session) Accessories() valueobjects.AccessorySelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessories
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() SessionState {
	if s.phase != "" {
		return s.phase
	}
	switch len(s.assets) {
	case 0:
		return StateIdle
	case 1:
		return StateAwaitingInputs
	default:
		return StateReady
	}
}

// BeginTryOn captures an immutable request from the current inputs and enters
// the in-flight state. cancel is invoked if the session is reset before the
// attempt settles. The returned epoch identifies this attempt.
func (s *Session) BeginTryOn(cancel context.CancelFunc) (*TryOnRequest, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == StateInFlight {
		return nil, 0, ErrTryOnInFlight
	}

	request, err := NewTryOnRequest(
		s.assets[valueobjects.RoleSubject],
		s.assets[valueobjects.RoleGarment],
		s.accessories,
	)
	if err != nil {
		return nil, 0, err
	}

	s.epoch++
	s.phase = StateInFlight
	s.cancel = cancel
	s.result = nil
	s.errorMessage = ""
	s.progress = 0
	s.messageIndex = 0
	s.touch()

	return request, s.epoch, nil
}

// Complete records a successful attempt. It reports false when the attempt
// is stale and the result was discarded.
func (s *Session) Complete(epoch uint64, result *TryOnResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applicable(epoch) {
		return false
	}
	s.phase = StateSucceeded
	s.result = result
	s.settle()
	return true
}

// Fail records a failed attempt. The uploaded images are kept so the user can retry.
func (s *Session) Fail(epoch uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applicable(epoch) {
		return false
	}
	s.phase = StateFailed
	s.errorMessage = message
	s.settle()
	return true
}

// Reset clears everything and returns the session to idle. Any in-flight
// attempt is cancelled and its eventual completion is ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.assets = make(map[valueobjects.Role]*valueobjects.ImageData, len(valueobjects.Roles))
	s.accessories = valueobjects.AccessorySelection{}
	s.phase = ""
	s.result = nil
	s.errorMessage = ""
	s.progress = 0
	s.messageIndex = 0
	s.touch()
}

// AdvanceProgress adds increment to the progress of the in-flight attempt,
// never exceeding ProgressCeiling.
func (s *Session) AdvanceProgress(epoch uint64, increment float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applicable(epoch) {
		return false
	}
	if s.progress >= ProgressCeiling {
		return true
	}
	s.progress = min(s.progress+increment, ProgressCeiling)
	return true
}

func (s *Session) AdvanceMessage(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applicable(epoch) {
		return false
	}
	s.messageIndex = (s.messageIndex + 1) % len(LoadingMessages)
	return true
}

// DecayProgress drops a completed progress bar back to zero, as long as no
// newer attempt or reset happened since epoch settled.
func (s *Session) DecayProgress(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.phase == StateInFlight {
		return false
	}
	s.progress = 0
	return true
}

func (s *Session) Result() *TryOnResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Snapshot returns a consistent copy of the observable session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	assets := make(map[valueobjects.Role]*valueobjects.ImageData, len(s.assets))
	for role, img := range s.assets {
		assets[role] = img
	}

	var images []*valueobjects.ImageData
	if s.result != nil {
		images = append(images, s.result.Images()...)
	}

	return SessionSnapshot{
		ID:           s.id,
		State:        s.state(),
		Assets:       assets,
		Accessories:  s.accessories.Labels(),
		Progress:     s.progress,
		MessageIndex: s.messageIndex,
		Message:      LoadingMessages[s.messageIndex],
		Results:      images,
		ErrorMessage: s.errorMessage,
		Epoch:        s.epoch,
		UpdatedAt:    s.updatedAt,
	}
}

func (s *Session) applicable(epoch uint64) bool {
	return epoch == s.epoch && s.phase == StateInFlight
}

func (s *Session) settle() {
	s.cancel = nil
	s.progress = ProgressDone
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// SessionSnapshot is a point-in-time view of a Session.
type SessionSnapshot struct {
	ID           SessionID
	State        SessionState
	Assets       map[valueobjects.Role]*valueobjects.ImageData
	Accessories  []string
	Progress     float64
	MessageIndex int
	Message      string
	Results      []*valueobjects.ImageData
	ErrorMessage string
	Epoch        uint64
	UpdatedAt    time.Time
}
