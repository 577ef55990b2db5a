package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/survey-builder/internal/metrics"
	"github.com/gokatarajesh/survey-builder/internal/survey"
)

const snapshotSaveTimeout = 2 * time.Second

var ErrSessionNotFound = errors.New("session not found")

// MissingRequiredError rejects a live-preview submission while required
// questions are unanswered.
type MissingRequiredError struct {
	QuestionIDs []string
}

func (e *MissingRequiredError) Error() string {
	return "required questions unanswered: " + strings.Join(e.QuestionIDs, ", ")
}

// Session is one authoring session owning a single survey document.
type Session struct {
	ID        uuid.UUID
	Store     *survey.Store
	CreatedAt time.Time

	now       func() time.Time
	snapshots *snapshotWriter // nil without a cache

	mu       sync.Mutex
	lastSeen time.Time
	attached int
}

// Dispatch applies cmd to the session's store and marks the session as in
// use. Submitting a live preview that is being taken with unanswered
// required questions is refused; the check runs against the same document
// the submit is applied to. Every other command is passed through and
// cannot fail.
func (s *Session) Dispatch(cmd survey.Command) error {
	s.Touch()
	if _, ok := cmd.(survey.SubmitLivePreview); !ok {
		s.Store.Apply(cmd)
		return nil
	}
	return s.Store.ApplyIf(cmd, requireAnswers)
}

func requireAnswers(doc survey.Document) error {
	if doc.LivePreview.Status != survey.StatusTaking {
		return nil
	}
	if missing := doc.MissingRequired(); len(missing) > 0 {
		return &MissingRequiredError{QuestionIDs: missing}
	}
	return nil
}

// Touch refreshes the idle clock.
func (s *Session) Touch() {
	s.touch(s.now())
}

// Attach records a live connection. Sessions with attached connections are
// never evicted by Sweep. The returned function detaches it.
func (s *Session) Attach() func() {
	s.mu.Lock()
	s.attached++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.attached--
			s.mu.Unlock()
			s.Touch()
		})
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// evictable reports whether the session sat idle since before cutoff with
// nothing attached.
func (s *Session) evictable(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached == 0 && s.lastSeen.Before(cutoff)
}

// flushSnapshots waits for queued snapshot writes.
func (s *Session) flushSnapshots() {
	if s.snapshots != nil {
		s.snapshots.flush()
	}
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	IdleTimeout time.Duration
	Factory     survey.Factory
	Cache       SnapshotCache    // optional
	Metrics     *metrics.Metrics // optional
}

// Manager owns every live session and its store.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*Session
	cache       SnapshotCache
	metrics     *metrics.Metrics
	factory     survey.Factory
	idleTimeout time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

func NewManager(logger zerolog.Logger, opts ManagerOptions) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		factory:     opts.Factory,
		idleTimeout: opts.IdleTimeout,
		now:         time.Now,
		logger:      logger.With().Str("component", "session_manager").Logger(),
	}
}

// Create starts a session with an empty survey.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.New()
	sess := m.open(id, nil)

	if m.cache != nil {
		if err := m.cache.Save(ctx, id, sess.Store.Snapshot()); err != nil {
			m.snapshotFailed("save", id, err)
		}
	}

	m.logger.Info().Str("session_id", id.String()).Msg("session created")
	return sess, nil
}

// Get returns the session, restoring it from the snapshot cache if it was
// evicted but its snapshot is still alive.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		sess.touch(m.now())
		return sess, nil
	}

	if m.cache == nil {
		return nil, ErrSessionNotFound
	}
	doc, err := m.cache.Load(ctx, id)
	if err != nil {
		m.snapshotFailed("load", id, err)
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if doc == nil {
		return nil, ErrSessionNotFound
	}

	sess = m.open(id, doc)
	m.logger.Info().Str("session_id", id.String()).Msg("session restored from snapshot")
	return sess, nil
}

// End discards the session and its snapshot. It returns ErrSessionNotFound
// when neither a live session nor a snapshot existed.
func (m *Manager) End(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		if m.metrics != nil {
			m.metrics.ActiveSessions.Dec()
		}
		// a write still in flight would recreate the snapshot after Delete
		sess.flushSnapshots()
	}

	existed := ok
	if m.cache != nil {
		found, err := m.cache.Delete(ctx, id)
		if err != nil {
			m.snapshotFailed("delete", id, err)
			return err
		}
		existed = existed || found
	}
	if !existed {
		return ErrSessionNotFound
	}

	m.logger.Info().Str("session_id", id.String()).Msg("session ended")
	return nil
}

// Sweep evicts sessions idle longer than the idle timeout and returns how
// many were dropped. Sessions with an attached connection are kept.
// Snapshots are left to expire on their own.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var evicted []*Session
	for id, sess := range m.sessions {
		if sess.evictable(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range evicted {
		m.logger.Info().Str("session_id", sess.ID.String()).Msg("idle session evicted")
	}
	if m.metrics != nil && len(evicted) > 0 {
		m.metrics.ActiveSessions.Sub(float64(len(evicted)))
		m.metrics.SessionsEvicted.Add(float64(len(evicted)))
	}
	return len(evicted)
}

// Count returns the number of sessions held in memory.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// open registers a new session for id, or returns the one a concurrent
// restore registered first.
func (m *Manager) open(id uuid.UUID, initial *survey.Document) *Session {
	now := m.now()
	store := survey.NewStore(m.logger, survey.StoreOptions{Factory: m.factory, Initial: initial})
	sess := &Session{ID: id, Store: store, CreatedAt: now, now: m.now, lastSeen: now}

	if m.metrics != nil {
		store.Subscribe(m.metrics.Observe)
	}
	if m.cache != nil {
		sess.snapshots = newSnapshotWriter(id, m.cache, m.snapshotFailed)
		store.Subscribe(sess.snapshots.observe)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		existing.touch(now)
		return existing
	}
	m.sessions[id] = sess
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.ActiveSessions.Inc()
	}
	return sess
}

func (m *Manager) snapshotFailed(op string, id uuid.UUID, err error) {
	m.logger.Warn().Err(err).Str("op", op).Str("session_id", id.String()).Msg("snapshot cache failure")
	if m.metrics != nil {
		m.metrics.SnapshotErrors.WithLabelValues(op).Inc()
	}
}
