package store

import (
	"context"
	"sync"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/google/uuid"
)

// InMemory is a process-local Memory used by tests and dry runs.
type InMemory struct {
	mu      sync.Mutex
	records []Record
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) GetByPartition(_ context.Context, partition string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, r := range m.records {
		if r.Partition == partition {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *InMemory) Create(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.ID == record.ID {
			return nil
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *InMemory) Remove(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return &errors.NotFoundError{Resource: "memory record", Identifier: id.String()}
}
