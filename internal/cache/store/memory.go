// Package store provides the durable snapshot store backends. All backends
// persist a single dashboard snapshot under a fixed key; corrupt persisted
// payloads are discarded and reported as a cache miss, never as an error.
package store

import (
	"context"
	"sync"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// dashboardKey is the fixed identifier for the single per-install dashboard
const dashboardKey = "dashboard"

// Memory is an in-process snapshot store. Survives across requests but not
// across restarts; the default backend for development.
type Memory struct {
	mu   sync.RWMutex
	snap *entity.Snapshot
}

// NewMemory creates an in-process snapshot store
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the stored snapshot, or (nil, nil) when empty
func (m *Memory) Load(_ context.Context) (*entity.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, nil
}

// Save replaces the stored snapshot
func (m *Memory) Save(_ context.Context, snap *entity.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

// Delete clears the stored snapshot
func (m *Memory) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}
