package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claritydental/walkout/internal/logging"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/ports"
)

var (
	// ErrEditorActive is returned when a form already has an editor.
	ErrEditorActive = errors.New("form session already has an active editor")
	// ErrSessionNotFound is returned for operations on a closed or
	// never-opened form session.
	ErrSessionNotFound = errors.New("form session not found")
)

// Form is one open editing session for an appointment section. Draft
// fields and the cached lookup key live here, not in package state, so
// the engine receives them explicitly at submission time.
type Form struct {
	AppointmentID string
	Section       domain.Section
	Editor        string
	Role          string
	OpenedAt      time.Time

	Draft domain.FieldSet
	// LookupKey is the rule-engine unique id the cached lookup results
	// belong to; handed to the engine as LastFetchedLookupKey.
	LookupKey string

	// Timer is nil for roles whose review time is not tracked.
	Timer *Timer
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager tracks open form sessions and serializes access per
// appointment section. It uses reference counting to garbage collect
// unused locks.
type Manager struct {
	mu       sync.Mutex
	locks    map[string]*lockEntry
	sessions map[string]*Form

	clock  func() time.Time
	tick   time.Duration
	timed  map[string]bool
	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithClock injects a deterministic time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithTick overrides the one-second timer tick, for tests.
func WithTick(d time.Duration) Option {
	return func(m *Manager) { m.tick = d }
}

// WithTimedRoles names the roles whose review time is tracked. The
// default tracks the LC3 review role only.
func WithTimedRoles(roles ...string) Option {
	return func(m *Manager) {
		m.timed = make(map[string]bool, len(roles))
		for _, r := range roles {
			m.timed[r] = true
		}
	}
}

// WithLocker extends form serialization across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLogger configures a logger for session events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Form),
		clock:    time.Now,
		tick:     time.Second,
		timed:    map[string]bool{"lc3": true},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func sessionKey(appointmentID string, section domain.Section) string {
	return appointmentID + "/" + string(section)
}

// acquire gets or creates a lock entry and increments its reference
// count. The caller must lock entry.mu and call release(key) after
// unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry when it
// reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the per-form lock.
func (m *Manager) WithLock(ctx context.Context, appointmentID string, section domain.Section, fn func(context.Context) error) error {
	key := sessionKey(appointmentID, section)
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, 30*time.Second)
		if err != nil {
			return fmt.Errorf("acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, will expire via TTL",
					"key", key, "err", err)
			}
		}()
	}

	return fn(ctx)
}

// Open starts an editing session for an appointment section. A second
// editor is rejected with ErrEditorActive; the form stays with the
// first until closed. Roles named in WithTimedRoles get a running
// review timer.
func (m *Manager) Open(ctx context.Context, appointmentID string, section domain.Section, editor, role string) (*Form, error) {
	var form *Form
	err := m.WithLock(ctx, appointmentID, section, func(context.Context) error {
		key := sessionKey(appointmentID, section)
		m.mu.Lock()
		_, exists := m.sessions[key]
		m.mu.Unlock()
		if exists {
			return ErrEditorActive
		}

		form = &Form{
			AppointmentID: appointmentID,
			Section:       section,
			Editor:        editor,
			Role:          role,
			OpenedAt:      m.clock(),
			Draft:         domain.FieldSet{},
		}
		if m.timed[role] {
			form.Timer = NewTimer(WithTimerClock(m.clock), WithTickInterval(m.tick))
			form.Timer.Start()
		}

		m.mu.Lock()
		m.sessions[key] = form
		m.mu.Unlock()

		m.logger.Info("form session opened",
			"appointment", appointmentID, "section", section, "editor", editor)
		return nil
	})
	return form, err
}

// Get returns the open session for an appointment section.
func (m *Manager) Get(appointmentID string, section domain.Section) (*Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	form, ok := m.sessions[sessionKey(appointmentID, section)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return form, nil
}

// SaveDraft replaces the session's draft fields and cached lookup key.
func (m *Manager) SaveDraft(ctx context.Context, appointmentID string, section domain.Section, draft domain.FieldSet, lookupKey string) error {
	return m.WithLock(ctx, appointmentID, section, func(context.Context) error {
		form, err := m.Get(appointmentID, section)
		if err != nil {
			return err
		}
		form.Draft = draft.Clone()
		form.LookupKey = lookupKey
		return nil
	})
}

// Close ends the session, stopping its review timer. The sealed timer
// record is returned when the session was timed.
func (m *Manager) Close(ctx context.Context, appointmentID string, section domain.Section) (Record, error) {
	var rec Record
	err := m.WithLock(ctx, appointmentID, section, func(context.Context) error {
		key := sessionKey(appointmentID, section)
		m.mu.Lock()
		form, ok := m.sessions[key]
		if ok {
			delete(m.sessions, key)
		}
		m.mu.Unlock()
		if !ok {
			return ErrSessionNotFound
		}

		if form.Timer != nil {
			rec, _ = form.Timer.Stop()
		}
		m.logger.Info("form session closed",
			"appointment", appointmentID, "section", section,
			"editor", form.Editor, "elapsed", rec.Elapsed)
		return nil
	})
	return rec, err
}

// Open sessions, in no particular order.
func (m *Manager) List() []*Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Form, 0, len(m.sessions))
	for _, form := range m.sessions {
		out = append(out, form)
	}
	return out
}
