package miner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/screa/hook-address-miner/pkg/types"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for an unknown or already collected handle.
var ErrSessionNotFound = errors.New("session not found")

// Miner tracks mining sessions by handle
type Miner struct {
	logger   *zap.Logger
	metrics  *Metrics
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMiner creates a new miner instance. Sessions started through it inherit
// logger and metrics unless their options set their own.
func NewMiner(logger *zap.Logger, metrics *Metrics) *Miner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Miner{
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Start launches a new session and returns its handle.
func (m *Miner) Start(cfg *types.MiningConfig, opts Options) (uuid.UUID, error) {
	if opts.Logger == nil {
		opts.Logger = m.logger
	}
	if opts.Metrics == nil {
		opts.Metrics = m.metrics
	}
	s, err := Start(cfg, opts)
	if err != nil {
		return uuid.Nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s.ID(), nil
}

// Session looks up a session by handle.
func (m *Miner) Session(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Stop requests cancellation of a session.
func (m *Miner) Stop(id uuid.UUID) error {
	s, err := m.Session(id)
	if err != nil {
		return err
	}
	s.Stop()
	return nil
}

// StopAll requests cancellation of every tracked session.
func (m *Miner) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		s.Stop()
	}
}

// Progress returns the aggregate counters of a session.
func (m *Miner) Progress(id uuid.UUID) (types.Progress, error) {
	s, err := m.Session(id)
	if err != nil {
		return types.Progress{}, err
	}
	return s.Progress(), nil
}

// Events returns the progress/result stream of a session.
func (m *Miner) Events(id uuid.UUID) (<-chan types.Event, error) {
	s, err := m.Session(id)
	if err != nil {
		return nil, err
	}
	return s.Events(), nil
}

// Wait blocks until the session ends and removes it from the registry.
func (m *Miner) Wait(ctx context.Context, id uuid.UUID) (types.Result, error) {
	s, err := m.Session(id)
	if err != nil {
		return types.Result{}, err
	}
	res, err := s.Wait(ctx)
	if err != nil {
		return types.Result{}, err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return res, nil
}

// Sessions returns the handles currently tracked.
func (m *Miner) Sessions() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
