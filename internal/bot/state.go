package bot

import (
	"sync"
	"time"
)

// State carries the cross-component runtime flags: the single-flight cycle
// lock, the pause flag and the notification silence window. It is passed
// explicitly to whoever needs it; there are no package-level globals.
type State struct {
	cycleMu sync.Mutex // held for the duration of one analysis cycle

	mu            sync.Mutex
	paused        bool
	silencedUntil time.Time
	skippedTicks  int
	lastRunAt     time.Time
}

func NewState() *State {
	return &State{}
}

// TryBeginCycle acquires the cycle lock without blocking. A false return
// means a cycle is already in flight and this tick must be skipped, not
// queued.
func (s *State) TryBeginCycle() bool {
	if !s.cycleMu.TryLock() {
		s.mu.Lock()
		s.skippedTicks++
		s.mu.Unlock()
		return false
	}
	return true
}

// TryBeginManual acquires the cycle lock for an on-demand operator command.
// Unlike a scheduled tick, a refusal is reported to the operator instead of
// counting as a skipped tick.
func (s *State) TryBeginManual() bool {
	return s.cycleMu.TryLock()
}

// EndManual releases the lock taken by TryBeginManual without stamping a
// cycle completion.
func (s *State) EndManual() {
	s.cycleMu.Unlock()
}

// EndCycle releases the cycle lock and stamps the completion time.
func (s *State) EndCycle() {
	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.mu.Unlock()
	s.cycleMu.Unlock()
}

func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SilenceUntil suppresses notifications until the given time.
func (s *State) SilenceUntil(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silencedUntil = t
}

func (s *State) Silenced(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.silencedUntil)
}

func (s *State) SkippedTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skippedTicks
}

func (s *State) LastRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
