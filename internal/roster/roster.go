// Package roster is the core of the service: it owns the record store and
// wraps every operation in the demo reset policy.
//
// A Service holds the backend, the seed snapshot and the time of the last
// reset behind one mutex. Each public method takes the lock, runs the
// freshness check, then performs its operation, so a reset can never
// interleave with a half-finished create and two requests can never both
// decide to reset.
package roster

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
	"github.com/aanand-mishra/alumnos-api/internal/storage"
	"github.com/aanand-mishra/alumnos-api/internal/types"
)

// DefaultResetWindow is how long demo mutations survive.
const DefaultResetWindow = 30 * time.Minute

// Reset causes, used as log field and metric label.
const (
	CauseStartup  = "startup"
	CauseWindow   = "window"
	CauseExplicit = "explicit"
	CauseSweep    = "sweep"
)

// Clock supplies the current time. Tests substitute a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Info describes the reset schedule, for the service banner. Now is the
// roster clock's reading when the snapshot was taken.
type Info struct {
	Now         time.Time
	Window      time.Duration
	LastResetAt time.Time
	NextResetAt time.Time
	Count       int
}

// Service is the roster. Create one with New.
type Service struct {
	mu          sync.Mutex
	store       storage.Storage
	seed        Seed
	clock       Clock
	window      time.Duration
	lastResetAt time.Time
	logger      *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithResetWindow overrides DefaultResetWindow.
func WithResetWindow(d time.Duration) Option {
	return func(s *Service) { s.window = d }
}

// WithLogger sets the logger used for reset events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New loads seed into store and starts the first reset window.
func New(store storage.Storage, seed Seed, opts ...Option) (*Service, error) {
	s := &Service{
		store:  store,
		seed:   seed,
		clock:  SystemClock{},
		window: DefaultResetWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resetLocked(s.clock.Now(), CauseStartup); err != nil {
		return nil, err
	}

	return s, nil
}

// resetLocked restores the seed and restarts the window. The caller holds mu.
// On failure lastResetAt is left alone so the next call retries.
func (s *Service) resetLocked(now time.Time, cause string) error {
	if err := s.store.Replace(s.seed.Students(), s.seed.NextID()); err != nil {
		return fmt.Errorf("reset roster: %w: %w", apperr.ErrInternal, err)
	}

	s.lastResetAt = now
	resetsTotal.WithLabelValues(cause).Inc()
	s.refreshGaugeLocked()

	s.logger.Info("roster reset to seed",
		slog.String("cause", cause),
		slog.Time("at", now),
	)
	return nil
}

// ensureFreshLocked resets the roster if the window has elapsed.
func (s *Service) ensureFreshLocked(cause string) (bool, error) {
	now := s.clock.Now()
	if now.Sub(s.lastResetAt) <= s.window {
		return false, nil
	}
	if err := s.resetLocked(now, cause); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) refreshGaugeLocked() {
	n, err := s.store.Count()
	if err != nil {
		s.logger.Warn("count students", slog.String("error", err.Error()))
		return
	}
	studentsGauge.Set(float64(n))
}

// EnsureFresh is the pre-check the dispatch layer runs before each
// request. It reports whether a reset happened. Safe to call repeatedly.
func (s *Service) EnsureFresh() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensureFreshLocked(CauseWindow)
}

// List returns records matching filter in insertion order.
func (s *Service) List(filter types.Filter) ([]types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return nil, err
	}
	return s.store.List(filter)
}

// Get returns one record.
func (s *Service) Get(id int64) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return types.Student{}, err
	}
	return s.store.GetByID(id)
}

// Create registers a new student now.
func (s *Service) Create(input types.StudentInput) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return types.Student{}, err
	}

	student := input.ToStudent()
	student.RegisteredAt = s.clock.Now()

	created, err := s.store.Create(student)
	if err != nil {
		return types.Student{}, err
	}

	s.refreshGaugeLocked()
	return created, nil
}

// Update applies the supplied fields of patch to record id.
//
// Email uniqueness is only enforced on Create; an update may introduce a
// duplicate.
func (s *Service) Update(id int64, patch types.StudentPatch) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return types.Student{}, err
	}
	return s.store.Update(id, patch)
}

// Delete removes record id.
func (s *Service) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.refreshGaugeLocked()
	return nil
}

// Activate marks record id active.
func (s *Service) Activate(id int64) error { return s.setActive(id, true) }

// Deactivate marks record id inactive.
func (s *Service) Deactivate(id int64) error { return s.setActive(id, false) }

func (s *Service) setActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return err
	}
	return s.store.SetActive(id, active)
}

// Statistics aggregates the current roster.
func (s *Service) Statistics() (types.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return types.Statistics{}, err
	}

	students, err := s.store.List(types.Filter{})
	if err != nil {
		return types.Statistics{}, err
	}
	return Aggregate(students), nil
}

// Reset restores the seed unconditionally and restarts the window.
// It returns the reset time.
func (s *Service) Reset() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if err := s.resetLocked(now, CauseExplicit); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Info reports the reset schedule and current record count.
func (s *Service) Info() (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureFreshLocked(CauseWindow); err != nil {
		return Info{}, err
	}

	n, err := s.store.Count()
	if err != nil {
		return Info{}, err
	}

	return Info{
		Now:         s.clock.Now(),
		Window:      s.window,
		LastResetAt: s.lastResetAt,
		NextResetAt: s.lastResetAt.Add(s.window),
		Count:       n,
	}, nil
}
