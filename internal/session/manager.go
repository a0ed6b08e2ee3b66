package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Advisor/internal/hermes"
	"github.com/MikeSquared-Agency/Advisor/internal/metrics"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)

type Options struct {
	Weights       scoring.WeightVector
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

// Manager holds live sessions in memory and evicts idle ones. Nothing is
// persisted; a restart starts every user from a fresh form.
type Manager struct {
	deps *Deps
	opts Options

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewManager(deps Deps, opts Options) *Manager {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		deps:     &deps,
		opts:     opts,
		sessions: make(map[uuid.UUID]*Session),
		stopCh:   make(chan struct{}),
	}
}

func (m *Manager) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s := New(m.deps, m.opts.Weights)
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	m.deps.Logger.Info("session created", "session_id", s.ID)
	m.publishSession(ctx, hermes.SubjectSessionCreated(s.ID.String()), s.ID)
	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	m.publishSession(ctx, hermes.SubjectSessionClosed(id.String()), id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) Start(ctx context.Context) {
	if m.opts.IdleTTL <= 0 {
		return
	}
	m.wg.Add(1)
	go m.sweepLoop(ctx)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sweep(ctx, time.Now()); n > 0 {
				m.deps.Logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// sweep drops sessions idle longer than the TTL. A session with an analysis
// in flight is kept until it settles.
func (m *Manager) sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var expired []uuid.UUID
	for id, s := range m.sessions {
		if s.Busy() || s.idleSince().After(cutoff) {
			continue
		}
		expired = append(expired, id)
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	metrics.SessionsExpired.Add(float64(len(expired)))
	for _, id := range expired {
		m.publishSession(ctx, hermes.SubjectSessionClosed(id.String()), id)
	}
	return len(expired)
}

func (m *Manager) publishSession(ctx context.Context, subject string, id uuid.UUID) {
	if m.deps.Hermes == nil {
		return
	}
	evt := hermes.SessionEvent{SessionID: id.String(), Timestamp: time.Now()}
	if err := m.deps.Hermes.Publish(ctx, subject, evt); err != nil {
		m.deps.Logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
