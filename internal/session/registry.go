// Package session provides per-caller credential isolation.
//
// Each session owns its own runtime configuration manager, so credentials
// configured by one caller are never visible to another. The registry is the
// sole owner of session records: it creates, looks up, expires and tears them
// down, and its background sweep is the only actor that removes sessions
// without an explicit request.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/runtimeconfig"
)

// Session is a point-in-time view of one session. Config is the live manager
// owned by the session; timestamps are snapshots taken under the registry
// lock.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastAccessed time.Time
	Config       *runtimeconfig.Manager
}

type record struct {
	id           string
	createdAt    time.Time
	lastAccessed time.Time
	manager      *runtimeconfig.Manager
}

func (r *record) snapshot() Session {
	return Session{
		ID:           r.id,
		CreatedAt:    r.createdAt,
		LastAccessed: r.lastAccessed,
		Config:       r.manager,
	}
}

// Registry maps session identifiers to their configuration managers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*record

	base          config.LNbitsConfig
	timeout       time.Duration
	sweepInterval time.Duration
	logger        *zap.Logger

	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewRegistry creates a registry. New sessions start from the base
// configuration; cfg controls idle timeout and sweep cadence.
func NewRegistry(base config.LNbitsConfig, cfg config.SessionConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:      make(map[string]*record),
		base:          base,
		timeout:       cfg.Timeout.Duration(),
		sweepInterval: cfg.SweepInterval.Duration(),
		logger:        logger.Named("session"),
	}
}

// Create allocates a new session with a fresh configuration manager and
// returns its snapshot.
func (r *Registry) Create() Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	rec := &record{
		id:           uuid.NewString(),
		createdAt:    now,
		lastAccessed: now,
		manager:      runtimeconfig.NewManager(r.base, r.logger),
	}
	r.sessions[rec.id] = rec

	r.logger.Info("session created",
		zap.String("session_id", rec.id),
		zap.Int("total_sessions", len(r.sessions)))
	return rec.snapshot()
}

// Get looks up a session and bumps its last-access time.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	rec.lastAccessed = time.Now()
	return rec.snapshot(), true
}

// GetOrCreate returns the session for id, or a new session when id is empty
// or unknown (expired sessions included). Callers that forget to pass an id
// still get correct, isolated behavior.
func (r *Registry) GetOrCreate(id string) Session {
	if id != "" {
		if sess, ok := r.Get(id); ok {
			return sess
		}
	}
	sess := r.Create()
	if id != "" {
		r.logger.Info("replaced unknown or expired session",
			zap.String("old_session_id", id),
			zap.String("session_id", sess.ID))
	}
	return sess
}

// Remove tears down a session and releases its client. Returns false when the
// id is unknown.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	rec, ok := r.sessions[id]
	delete(r.sessions, id)
	total := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	rec.manager.Close()
	r.logger.Info("session removed",
		zap.String("session_id", id),
		zap.Int("total_sessions", total))
	return true
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Start launches the background expiry sweep. Calling Start on a running
// registry is a no-op; there is never more than one sweep goroutine.
func (r *Registry) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.sweepLoop(r.stop, r.done)
}

// Stop halts the sweep and waits for it to finish, then tears down all
// remaining sessions.
func (r *Registry) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done

	for _, id := range r.ids() {
		r.Remove(id)
	}
}

func (r *Registry) sweepLoop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep removes all sessions idle beyond the configured timeout.
func (r *Registry) Sweep() {
	cutoff := time.Now().Add(-r.timeout)

	r.mu.Lock()
	var expired []string
	for id, rec := range r.sessions {
		if rec.lastAccessed.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		if r.Remove(id) {
			r.logger.Info("session expired", zap.String("session_id", id))
		}
	}
}

func (r *Registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
