package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rentfair/server/internal/amenity"
	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

// Page is the navigation state of a session. The flow is a small fixed
// machine: Welcome -> Input -> Result, with Result looping back to Input
// for another estimate.
type Page string

const (
	PageWelcome Page = "welcome"
	PageInput   Page = "input"
	PageResult  Page = "result"
)

// transitions lists the legal moves. Input -> Input covers form edits.
var transitions = map[Page][]Page{
	PageWelcome: {PageInput},
	PageInput:   {PageInput, PageResult},
	PageResult:  {PageInput},
}

func canMove(from, to Page) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session carries one user's navigation state and an immutable snapshot of
// the estimated property. The amenity cache lives here so cached candidates
// expire with the session.
type Session struct {
	ID        string                   `json:"id"`
	Page      Page                     `json:"page"`
	Record    *models.PropertyRecord   `json:"record,omitempty"`
	Estimate  *models.PriceEstimate    `json:"estimate,omitempty"`
	Location  *models.GeoPoint         `json:"location,omitempty"`
	Amenities []amenity.CategoryResult `json:"amenities,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`

	cache *amenity.Cache
}

// Cache returns the session-scoped amenity cache.
func (s *Session) Cache() *amenity.Cache {
	return s.cache
}

// snapshot copies the session for handing out. Record, Estimate, Location
// and Amenities are replaced wholesale on transition, never mutated in
// place, so sharing the pointed-to values is safe. The cache is shared on
// purpose; it has its own lock.
func (s *Session) snapshot() *Session {
	copied := *s
	return &copied
}

// Manager owns the in-memory session store. Idle sessions expire lazily on
// access.
type Manager struct {
	logger   *logrus.Logger
	idleTTL  time.Duration
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(logger *logrus.Logger, idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Manager{
		logger:   logger,
		idleTTL:  idleTTL,
		sessions: make(map[string]*Session),
	}
}

// Create starts a fresh session on the welcome page.
func (m *Manager) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Page:      PageWelcome,
		CreatedAt: now,
		UpdatedAt: now,
		cache:     amenity.NewCache(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.WithField("session_id", s.ID).Info("Created session")
	return s.snapshot()
}

// Get returns a snapshot of the session, or ErrSessionNotFound for unknown
// and expired IDs. Callers never see the live session; a concurrent
// transition cannot mutate what a handler is serializing.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lockedGet(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// lockedGet returns the live session. Caller must hold m.mu.
func (m *Manager) lockedGet(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if time.Since(s.UpdatedAt) > m.idleTTL {
		delete(m.sessions, id)
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

// Start moves a session from Welcome to Input.
func (m *Manager) Start(id string) (*Session, error) {
	return m.transition(id, PageInput, func(s *Session) {})
}

// CompleteEstimate moves a session to Result, capturing the canonical
// record, the estimate and the resolved amenity results as the session's
// immutable snapshot.
func (m *Manager) CompleteEstimate(id string, record models.PropertyRecord, estimate models.PriceEstimate, location *models.GeoPoint, amenities []amenity.CategoryResult) (*Session, error) {
	return m.transition(id, PageResult, func(s *Session) {
		s.Record = &record
		s.Estimate = &estimate
		s.Location = location
		s.Amenities = amenities
	})
}

// Reset moves a session from Result back to Input for another estimate.
// The previous snapshot is kept until the next estimate replaces it.
func (m *Manager) Reset(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lockedGet(id)
	if err != nil {
		return nil, err
	}
	// Welcome -> Input is a legal move, but only Start may make it.
	if s.Page != PageResult {
		return nil, apperrors.ErrInvalidTransition
	}

	s.Page = PageInput
	s.UpdatedAt = time.Now()
	return s.snapshot(), nil
}

func (m *Manager) transition(id string, to Page, apply func(*Session)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lockedGet(id)
	if err != nil {
		return nil, err
	}
	if !canMove(s.Page, to) {
		return nil, apperrors.ErrInvalidTransition
	}

	apply(s)
	s.Page = to
	s.UpdatedAt = time.Now()
	return s.snapshot(), nil
}
