package server

import (
	"sync"
	"time"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/google/uuid"
)

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000
)

type sessionEntry struct {
	session  *analysis.Session
	lastSeen time.Time
}

// SessionStore keeps each session's selection in memory. Sessions are
// handed out as copies so callers never share a Selection slice.
// Sessions idle for longer than the TTL expire; when the store is full the
// least recently used session is evicted.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	defaults analysis.Selection
	ttl      time.Duration
	max      int
	now      func() time.Time
	onChange func(n int)
}

// NewSessionStore returns a store whose new sessions start at defaults.
// Non-positive ttl or maxSessions select DefaultSessionTTL and DefaultMaxSessions.
func NewSessionStore(defaults analysis.Selection, ttl time.Duration, maxSessions int) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		defaults: cloneSelection(defaults),
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
	}
}

// Get returns a copy of the session with the given id and marks it used.
func (st *SessionStore) Get(id string) (analysis.Session, bool) {
	st.mu.Lock()
	e, ok := st.touch(id)
	n := len(st.sessions)
	st.mu.Unlock()
	if !ok {
		st.changed(n)
		return analysis.Session{}, false
	}
	return copySession(e.session), true
}

// Create starts a new session with a random id, first dropping expired
// sessions and, at capacity, the least recently used one.
func (st *SessionStore) Create() analysis.Session {
	s := analysis.NewSession(uuid.NewString())
	s.Selection = cloneSelection(st.defaults)

	st.mu.Lock()
	now := st.now()
	st.sweep(now)
	for len(st.sessions) >= st.max {
		st.evictOldest()
	}
	st.sessions[s.ID] = &sessionEntry{session: s, lastSeen: now}
	n := len(st.sessions)
	st.mu.Unlock()

	st.changed(n)
	return copySession(s)
}

// SetSelection replaces the selection of an existing session.
func (st *SessionStore) SetSelection(id string, sel analysis.Selection) (analysis.Session, bool) {
	st.mu.Lock()
	e, ok := st.touch(id)
	n := len(st.sessions)
	if ok {
		e.session.Selection = cloneSelection(sel)
	}
	st.mu.Unlock()
	if !ok {
		st.changed(n)
		return analysis.Session{}, false
	}
	return copySession(e.session), true
}

// Len returns the number of sessions held.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// touch looks up id, expiring it when idle past the TTL. Callers hold mu.
func (st *SessionStore) touch(id string) (*sessionEntry, bool) {
	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(e.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e, true
}

func (st *SessionStore) sweep(now time.Time) {
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}

func (st *SessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range st.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	delete(st.sessions, oldestID)
}

func (st *SessionStore) changed(n int) {
	if st.onChange != nil {
		st.onChange(n)
	}
}

func copySession(s *analysis.Session) analysis.Session {
	return analysis.Session{ID: s.ID, Selection: cloneSelection(s.Selection)}
}

func cloneSelection(sel analysis.Selection) analysis.Selection {
	seasons := make([]dataset.Season, len(sel.Seasons))
	copy(seasons, sel.Seasons)
	return analysis.Selection{Seasons: seasons, WorkingDay: sel.WorkingDay}
}
