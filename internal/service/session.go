package service

import (
	"sync"
	"time"

	"github.com/krakosik/demoday/internal/ballot"
	"github.com/krakosik/demoday/internal/model"
)

// votingSession is one voter's in-progress ballot. mu guards selection and
// status and is held across a submit, so no selection change can slip in
// while the ballot is being written.
type votingSession struct {
	mu        sync.Mutex
	id        string
	voterName string
	selection *ballot.Selection
	status    ballot.Status
	lastSeen  time.Time
}

// Session is a read-only view of a voting session.
type Session struct {
	ID          string
	VoterName   string
	Status      ballot.Status
	Quota       ballot.Quota
	DemoDay     int
	Private     int
	Submittable bool
	Selections  model.Selections
}

// snapshot must be called with s.mu held.
func (s *votingSession) snapshot() Session {
	status := s.status
	if !status.Terminal() {
		status = s.selection.Status()
	}
	return Session{
		ID:          s.id,
		VoterName:   s.voterName,
		Status:      status,
		Quota:       s.selection.Quota(),
		DemoDay:     s.selection.Count(model.VoteCategoryDemoDay),
		Private:     s.selection.Count(model.VoteCategoryPrivatePitch),
		Submittable: s.selection.Submittable(),
		Selections:  s.selection.Selections(),
	}
}

// sessionStore is the in-memory session cache. Entries idle for longer than
// ttl are dropped on access and by Sweep.
type sessionStore struct {
	sessions map[string]*votingSession
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*votingSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *sessionStore) put(session *votingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.lastSeen = s.now()
	s.sessions[session.id] = session
}

// get returns the live session and refreshes its idle timer.
func (s *sessionStore) get(id string) (*votingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, false
	}
	now := s.now()
	if s.expired(session, now) {
		delete(s.sessions, id)
		return nil, false
	}
	session.lastSeen = now
	return session, true
}

func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (s *sessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) expired(session *votingSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.lastSeen) > s.ttl
}
