package revocation

import (
	"context"
	"sync"
)

// Memory is a process-local registry for tests and single-instance runs.
// It does not survive restarts; production deployments use Redis.
type Memory struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{revoked: make(map[string]struct{})}
}

func (m *Memory) Revoke(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.revoked[jti]; ok {
		return false, nil
	}
	m.revoked[jti] = struct{}{}
	return true, nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.revoked[jti]
	return ok, nil
}
