package generation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	machine  *Machine
	lastSeen time.Time
}

// Sessions hands out one Machine per session id.
type Sessions struct {
	newMachine func() *Machine
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessions(newMachine func() *Machine) *Sessions {
	return &Sessions{
		newMachine: newMachine,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

// Get returns the machine for id. Ids the registry did not issue, or has
// swept, get a fresh session under a newly minted id; the returned id is the
// one the caller must present next time.
func (s *Sessions) Get(id string) (string, *Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		id = uuid.NewString()
		sess = &session{machine: s.newMachine()}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return id, sess.machine
}

// Drop forgets a session.
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than maxIdle that have no request in
// flight, and reports how many were removed.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) && !sess.machine.Snapshot().Loading {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
