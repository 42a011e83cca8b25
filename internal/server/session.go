package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"goldcast/internal/controller"
	"goldcast/internal/logger"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "goldcast_session"

type session struct {
	ctrl     *controller.Controller
	lastSeen time.Time
}

// SessionStore keeps one controller per browser session in memory.
// Sessions idle longer than the TTL are dropped by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	build    func() *controller.Controller
	now      func() time.Time
	log      *logger.Logger
}

// NewSessionStore creates a store that builds controllers with build
func NewSessionStore(ttl time.Duration, build func() *controller.Controller) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		build:    build,
		now:      time.Now,
		log:      logger.Component("sessions"),
	}
}

// Get returns the controller for id and marks the session as used
func (st *SessionStore) Get(id string) (*controller.Controller, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = st.now()
	return sess.ctrl, true
}

// Create starts a session with a fresh controller
func (st *SessionStore) Create() (string, *controller.Controller) {
	id := uuid.NewString()
	ctrl := st.build()

	st.mu.Lock()
	st.sessions[id] = &session{ctrl: ctrl, lastSeen: st.now()}
	st.mu.Unlock()

	st.log.Debug("session created", logger.Fields{"session": id})
	return id, ctrl
}

// Resolve finds the request's session or starts one and sets the cookie
func (st *SessionStore) Resolve(w http.ResponseWriter, r *http.Request) *controller.Controller {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			if ctrl, ok := st.Get(c.Value); ok {
				return ctrl
			}
		}
	}

	id, ctrl := st.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ctrl
}

// Sweep drops expired sessions and returns how many were removed
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}

	cutoff := st.now().Add(-st.ttl)
	removed := 0

	st.mu.Lock()
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	st.mu.Unlock()

	if removed > 0 {
		st.log.Info("expired idle sessions", logger.Fields{"removed": removed})
	}
	return removed
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Run sweeps every half TTL until ctx is done
func (st *SessionStore) Run(ctx context.Context) {
	if st.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(st.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}
