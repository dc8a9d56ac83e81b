package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/google/uuid"
)

// Partition keys, one logical room per lifecycle state.
const (
	ActivePartition    = "campaigns-room"
	StartedPartition   = "started-campaigns"
	CompletedPartition = "completed-campaigns"
)

// Record is one campaign stored in a partition of the memory collaborator.
type Record struct {
	ID        uuid.UUID
	Partition string
	Campaign  types.Campaign
}

// Memory is the storage collaborator the campaign store is built on.
type Memory interface {
	GetByPartition(ctx context.Context, partition string) ([]Record, error)
	Create(ctx context.Context, record Record) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// Mover is implemented by memory collaborators that can replace a record with
// its successor in a single atomic step.
type Mover interface {
	MoveRecord(ctx context.Context, from uuid.UUID, to Record) error
}

// recordNamespace seeds deterministic record ids.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("campaign-monitor/campaign-memory"))

// RecordID is the id of a campaign's record in partition. It is stable so that
// re-creating the same record is idempotent.
func RecordID(partition, campaignID string) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(partition+"/"+campaignID))
}

// PartitionFor maps a lifecycle state to its partition key.
func PartitionFor(state types.State) (string, error) {
	switch state {
	case types.StateActive:
		return ActivePartition, nil
	case types.StateStarted:
		return StartedPartition, nil
	case types.StateCompleted:
		return CompletedPartition, nil
	}
	return "", fmt.Errorf("unknown campaign state %q", state)
}

// CampaignStore partitions campaigns by lifecycle state. Readers and movers
// are serialized so a campaign is never observed in two partitions or in none.
type CampaignStore struct {
	memory Memory
	mu     sync.RWMutex
}

func NewCampaignStore(memory Memory) *CampaignStore {
	return &CampaignStore{memory: memory}
}

// List returns the campaigns in state's partition.
func (s *CampaignStore) List(ctx context.Context, state types.State) ([]types.Campaign, error) {
	partition, err := PartitionFor(state)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.memory.GetByPartition(ctx, partition)
	if err != nil {
		return nil, err
	}
	campaigns := make([]types.Campaign, 0, len(records))
	for _, r := range records {
		c := r.Campaign
		c.State = state
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

// Get returns one campaign from state's partition.
func (s *CampaignStore) Get(ctx context.Context, id string, state types.State) (types.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.find(ctx, id, state)
	if err != nil {
		return types.Campaign{}, err
	}
	return rec.Campaign, nil
}

// Put stores c in the partition of c.State. Intake uses it to register new
// Active campaigns.
func (s *CampaignStore) Put(ctx context.Context, c types.Campaign) error {
	if c.State == "" {
		c.State = types.StateActive
	}
	partition, err := PartitionFor(c.State)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.memory.Create(ctx, Record{ID: RecordID(partition, c.ID), Partition: partition, Campaign: c})
}

// Move transfers campaign id from one partition to another. The copy in the
// target partition is written before the source record is removed.
func (s *CampaignStore) Move(ctx context.Context, id string, from, to types.State) error {
	target, err := PartitionFor(to)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.find(ctx, id, from)
	if err != nil {
		return err
	}

	moved := rec.Campaign
	moved.State = to
	next := Record{ID: RecordID(target, id), Partition: target, Campaign: moved}

	if mover, ok := s.memory.(Mover); ok {
		return mover.MoveRecord(ctx, rec.ID, next)
	}
	if err := s.memory.Create(ctx, next); err != nil {
		return err
	}
	return s.memory.Remove(ctx, rec.ID)
}

// Delete purges campaign id from every partition it occupies.
func (s *CampaignStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, state := range types.States {
		rec, err := s.find(ctx, id, state)
		if errors.IsCampaignNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.memory.Remove(ctx, rec.ID); err != nil {
			return err
		}
		found = true
	}
	if !found {
		return errors.CampaignNotFound(id)
	}
	return nil
}

// find must be called with s.mu held.
func (s *CampaignStore) find(ctx context.Context, id string, state types.State) (Record, error) {
	partition, err := PartitionFor(state)
	if err != nil {
		return Record{}, err
	}
	records, err := s.memory.GetByPartition(ctx, partition)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.Campaign.ID == id {
			r.Campaign.State = state
			return r, nil
		}
	}
	return Record{}, errors.CampaignNotFound(id)
}
