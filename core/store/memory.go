// Package store provides in-memory core.EmployeeStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/payroll-engine/core"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps employees in a map plus an insertion-ordered id list.
// Ids come from a counter starting at 1 that is never reused until Clear.
type Memory struct {
	mu     sync.RWMutex
	byID   map[core.EmployeeID]*core.Employee
	order  []core.EmployeeID
	nextID core.EmployeeID
}

func NewMemory() *Memory {
	return &Memory{
		byID:   make(map[core.EmployeeID]*core.Employee),
		nextID: 1,
	}
}

// Save assigns the next id to unsaved employees and stores them. Saved
// employees overwrite their entry in place; an id beyond the counter moves
// the counter past it so it is never handed out again.
func (m *Memory) Save(_ context.Context, e *core.Employee) (*core.Employee, error) {
	if e == nil {
		return nil, core.Invalid("employee", "is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !e.ID().IsAssigned() {
		e = e.WithID(m.nextID)
		m.nextID++
	} else if e.ID() >= m.nextID {
		m.nextID = e.ID() + 1
	}
	if _, exists := m.byID[e.ID()]; !exists {
		m.order = append(m.order, e.ID())
	}
	m.byID[e.ID()] = e
	return e, nil
}

func (m *Memory) FindByID(_ context.Context, id core.EmployeeID) (*core.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id], nil
}

// FindAll returns employees in insertion order.
func (m *Memory) FindAll(_ context.Context) ([]*core.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*core.Employee, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.byID[id])
	}
	return result, nil
}

// Clear drops every employee and restarts ids at 1.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[core.EmployeeID]*core.Employee)
	m.order = nil
	m.nextID = 1
}

// Reset implements core.Resetter.
func (m *Memory) Reset(_ context.Context) error {
	m.Clear()
	return nil
}

// Len returns the number of stored employees.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
