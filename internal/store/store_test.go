package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMemory is a mock implementation of Memory
type MockMemory struct {
	mock.Mock
}

func (m *MockMemory) GetByPartition(ctx context.Context, partition string) ([]Record, error) {
	args := m.Called(ctx, partition)
	records, _ := args.Get(0).([]Record)
	return records, args.Error(1)
}

func (m *MockMemory) Create(ctx context.Context, record Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockMemory) Remove(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func seed(t *testing.T, s *CampaignStore, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, s.Put(context.Background(), types.Campaign{
			ID:        id,
			Token:     "BONK",
			Bounty:    "$100",
			CreatedAt: time.Now(),
		}))
	}
}

func partitionsOf(t *testing.T, s *CampaignStore, id string) []types.State {
	t.Helper()
	var found []types.State
	for _, state := range types.States {
		list, err := s.List(context.Background(), state)
		require.NoError(t, err)
		for _, c := range list {
			if c.ID == id {
				found = append(found, state)
			}
		}
	}
	return found
}

func TestPutDefaultsToActive(t *testing.T) {
	s := NewCampaignStore(NewInMemory())
	seed(t, s, "c1")

	list, err := s.List(context.Background(), types.StateActive)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, types.StateActive, list[0].State)

	// idempotent re-create
	seed(t, s, "c1")
	list, _ = s.List(context.Background(), types.StateActive)
	assert.Len(t, list, 1)
}

func TestMoveTransfersBetweenPartitions(t *testing.T) {
	s := NewCampaignStore(NewInMemory())
	seed(t, s, "c1", "c2")

	require.NoError(t, s.Move(context.Background(), "c1", types.StateActive, types.StateStarted))

	assert.Equal(t, []types.State{types.StateStarted}, partitionsOf(t, s, "c1"))
	assert.Equal(t, []types.State{types.StateActive}, partitionsOf(t, s, "c2"))

	c, err := s.Get(context.Background(), "c1", types.StateStarted)
	require.NoError(t, err)
	assert.Equal(t, types.StateStarted, c.State)
	assert.Equal(t, "BONK", c.Token)

	require.NoError(t, s.Move(context.Background(), "c1", types.StateStarted, types.StateCompleted))
	assert.Equal(t, []types.State{types.StateCompleted}, partitionsOf(t, s, "c1"))
}

func TestMoveNotFound(t *testing.T) {
	s := NewCampaignStore(NewInMemory())
	seed(t, s, "c1")

	err := s.Move(context.Background(), "missing", types.StateActive, types.StateStarted)
	assert.True(t, errors.IsCampaignNotFound(err))

	err = s.Move(context.Background(), "c1", types.StateStarted, types.StateCompleted)
	assert.True(t, errors.IsCampaignNotFound(err))
	assert.Equal(t, []types.State{types.StateActive}, partitionsOf(t, s, "c1"))
}

func TestMoveCreateFailureKeepsSource(t *testing.T) {
	mem := new(MockMemory)
	campaign := types.Campaign{ID: "c1"}
	source := Record{ID: RecordID(ActivePartition, "c1"), Partition: ActivePartition, Campaign: campaign}

	mem.On("GetByPartition", mock.Anything, ActivePartition).Return([]Record{source}, nil)
	mem.On("Create", mock.Anything, mock.MatchedBy(func(r Record) bool {
		return r.Partition == StartedPartition && r.Campaign.State == types.StateStarted
	})).Return(fmt.Errorf("disk full"))

	err := NewCampaignStore(mem).Move(context.Background(), "c1", types.StateActive, types.StateStarted)

	assert.ErrorContains(t, err, "disk full")
	mem.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	mem.AssertExpectations(t)
}

func TestMoveCreatesBeforeRemoving(t *testing.T) {
	mem := new(MockMemory)
	source := Record{ID: RecordID(StartedPartition, "c1"), Partition: StartedPartition, Campaign: types.Campaign{ID: "c1"}}

	var order []string
	mem.On("GetByPartition", mock.Anything, StartedPartition).Return([]Record{source}, nil)
	mem.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) { order = append(order, "create") }).Return(nil)
	mem.On("Remove", mock.Anything, source.ID).Run(func(mock.Arguments) { order = append(order, "remove") }).Return(nil)

	require.NoError(t, NewCampaignStore(mem).Move(context.Background(), "c1", types.StateStarted, types.StateCompleted))
	assert.Equal(t, []string{"create", "remove"}, order)
}

type moverMemory struct {
	*InMemory
	moves int
}

func (m *moverMemory) MoveRecord(ctx context.Context, from uuid.UUID, to Record) error {
	m.moves++
	if err := m.InMemory.Create(ctx, to); err != nil {
		return err
	}
	return m.InMemory.Remove(ctx, from)
}

func TestMoveUsesAtomicMover(t *testing.T) {
	mem := &moverMemory{InMemory: NewInMemory()}
	s := NewCampaignStore(mem)
	seed(t, s, "c1")

	require.NoError(t, s.Move(context.Background(), "c1", types.StateActive, types.StateStarted))
	assert.Equal(t, 1, mem.moves)
	assert.Equal(t, []types.State{types.StateStarted}, partitionsOf(t, s, "c1"))
}

func TestDelete(t *testing.T) {
	s := NewCampaignStore(NewInMemory())
	seed(t, s, "c1")

	require.NoError(t, s.Delete(context.Background(), "c1"))
	assert.Empty(t, partitionsOf(t, s, "c1"))
	assert.True(t, errors.IsCampaignNotFound(s.Delete(context.Background(), "c1")))
}

func TestConcurrentMoveNeverObservedTwiceOrNever(t *testing.T) {
	s := NewCampaignStore(NewInMemory())
	ids := []string{"c1", "c2", "c3", "c4", "c5"}
	seed(t, s, ids...)

	var wg sync.WaitGroup
	done := make(chan struct{})
	violations := make(chan string, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			s.mu.RLock()
			counts := map[string]int{}
			for _, p := range []string{ActivePartition, StartedPartition, CompletedPartition} {
				records, _ := s.memory.GetByPartition(context.Background(), p)
				for _, r := range records {
					counts[r.Campaign.ID]++
				}
			}
			s.mu.RUnlock()
			for _, id := range ids {
				if counts[id] != 1 {
					select {
					case violations <- fmt.Sprintf("%s seen %d times", id, counts[id]):
					default:
					}
				}
			}
		}
	}()

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, s.Move(context.Background(), id, types.StateActive, types.StateStarted))
			assert.NoError(t, s.Move(context.Background(), id, types.StateStarted, types.StateCompleted))
		}(id)
	}

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()
	close(violations)

	for v := range violations {
		t.Error(v)
	}
	for _, id := range ids {
		assert.Equal(t, []types.State{types.StateCompleted}, partitionsOf(t, s, id))
	}
}

func TestRecordIDDeterministic(t *testing.T) {
	assert.Equal(t, RecordID(ActivePartition, "c1"), RecordID(ActivePartition, "c1"))
	assert.NotEqual(t, RecordID(ActivePartition, "c1"), RecordID(StartedPartition, "c1"))
}
