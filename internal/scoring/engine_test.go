package scoring

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAssessor is a mock implementation of QualityAssessor
type MockAssessor struct {
	mock.Mock
}

func (m *MockAssessor) Assess(ctx context.Context, items []types.ContentItem) (types.QualityScore, error) {
	args := m.Called(ctx, items)
	score, _ := args.Get(0).(types.QualityScore)
	return score, args.Error(1)
}

// fixedAssessor returns a deterministic quality for every item id it is given.
type fixedAssessor struct {
	scores types.QualityScore
	calls  [][]types.ContentItem
}

func (f *fixedAssessor) Assess(_ context.Context, items []types.ContentItem) (types.QualityScore, error) {
	f.calls = append(f.calls, items)
	out := types.QualityScore{}
	for _, item := range items {
		if q, ok := f.scores[item.ID]; ok {
			out[item.ID] = q
		}
	}
	return out, nil
}

func TestPoints(t *testing.T) {
	item := types.ContentItem{ImpressionCount: 100, LikeCount: 10}
	assert.InDelta(t, 11.0, Points(item), 1e-9)

	item = types.ContentItem{ImpressionCount: 250, LikeCount: 3, ShareCount: 2, ReplyCount: 5}
	assert.InDelta(t, 2.5+3+8+10, Points(item), 1e-9)
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, Multiplier(0))
	assert.Equal(t, 1.5, Multiplier(50))
	assert.Equal(t, 2.0, Multiplier(100))
	assert.Equal(t, 2.0, Multiplier(400))
	assert.Equal(t, 1.0, Multiplier(-20))
}

func TestScoreSingleItemExample(t *testing.T) {
	assessor := new(MockAssessor)
	assessor.On("Assess", mock.Anything, mock.Anything).Return(types.QualityScore{"t1": 0}, nil).Once()

	engine := NewEngine(assessor, "miraya7f")
	board, err := engine.Score(context.Background(), []types.ContentItem{
		{ID: "t1", AuthorHandle: "alice", ImpressionCount: 100, LikeCount: 10},
	})

	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "alice", board[0].AuthorHandle)
	assert.InDelta(t, 11.0, board[0].Score, 1e-9)
	assessor.AssertExpectations(t)
}

func TestScoreAppliesQualityAndMissingDefaultsToZero(t *testing.T) {
	assessor := &fixedAssessor{scores: types.QualityScore{"t1": 50}}
	engine := NewEngine(assessor, "")

	board, err := engine.Score(context.Background(), []types.ContentItem{
		{ID: "t1", AuthorHandle: "alice", LikeCount: 10},
		{ID: "t2", AuthorHandle: "bob", LikeCount: 10},
	})

	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "alice", board[0].AuthorHandle)
	assert.InDelta(t, 15.0, board[0].Score, 1e-9)
	assert.InDelta(t, 10.0, board[1].Score, 1e-9)
}

func TestScoreExcludesOperatorHandle(t *testing.T) {
	engine := NewEngine(nil, "@Miraya7f")

	board, err := engine.Score(context.Background(), []types.ContentItem{
		{ID: "t1", AuthorHandle: "miraya7f", LikeCount: 1000},
		{ID: "t2", AuthorHandle: "alice", LikeCount: 1},
		{ID: "t3", AuthorHandle: "MIRAYA7F", ShareCount: 50},
	})

	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "alice", board[0].AuthorHandle)
	for _, entry := range board {
		assert.NotEqual(t, "miraya7f", normalizeHandle(entry.AuthorHandle))
	}
}

func TestAggregateStableTieOrder(t *testing.T) {
	scored := []ScoredItem{
		{Item: types.ContentItem{AuthorHandle: "B"}, Score: 30},
		{Item: types.ContentItem{AuthorHandle: "A"}, Score: 20},
		{Item: types.ContentItem{AuthorHandle: "C"}, Score: 10},
		{Item: types.ContentItem{AuthorHandle: "A"}, Score: 10},
	}

	board := Aggregate(scored)

	require.Len(t, board, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{board[0].AuthorHandle, board[1].AuthorHandle, board[2].AuthorHandle})
	assert.Equal(t, []int{1, 2, 3}, []int{board[0].Rank, board[1].Rank, board[2].Rank})
	assert.Equal(t, 30.0, board[1].Score)
}

func TestAggregateKeepsFirstPayoutAddress(t *testing.T) {
	board := Aggregate([]ScoredItem{
		{Item: types.ContentItem{AuthorHandle: "A"}, Score: 1},
		{Item: types.ContentItem{AuthorHandle: "A", AuthorPublicKey: "addr-1"}, Score: 1},
		{Item: types.ContentItem{AuthorHandle: "A", AuthorPublicKey: "addr-2"}, Score: 1},
	})

	require.Len(t, board, 1)
	assert.Equal(t, "addr-1", board[0].PayoutAddress)
}

func TestChunk(t *testing.T) {
	items := make([]types.ContentItem, 120)
	chunks := Chunk(items, 50)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 50)
	assert.Len(t, chunks[2], 20)
	assert.Empty(t, Chunk(nil, 50))
}

func TestScoreChunkingInvariance(t *testing.T) {
	for _, n := range []int{1, 49, 50, 51, 137} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			items := make([]types.ContentItem, n)
			quality := types.QualityScore{}
			for i := range items {
				id := fmt.Sprintf("t%d", i)
				items[i] = types.ContentItem{
					ID:              id,
					AuthorHandle:    fmt.Sprintf("author%d", i%7),
					ImpressionCount: int64(i * 37 % 1000),
					LikeCount:       int64(i % 11),
					ShareCount:      int64(i % 3),
					ReplyCount:      int64(i % 5),
				}
				quality[id] = i * 13 % 101
			}

			chunkedAssessor := &fixedAssessor{scores: quality}
			chunked, err := NewEngine(chunkedAssessor, "").Score(context.Background(), items)
			require.NoError(t, err)

			wholeAssessor := &fixedAssessor{scores: quality}
			whole, err := NewEngine(wholeAssessor, "", WithBatchSize(n)).Score(context.Background(), items)
			require.NoError(t, err)

			assert.Equal(t, whole, chunked)
			assert.Len(t, wholeAssessor.calls, 1)
			assert.Len(t, chunkedAssessor.calls, (n+DefaultBatchSize-1)/DefaultBatchSize)
			for _, call := range chunkedAssessor.calls {
				assert.LessOrEqual(t, len(call), DefaultBatchSize)
			}
		})
	}
}

func TestScoreAssessorFailure(t *testing.T) {
	items := []types.ContentItem{{ID: "t1", AuthorHandle: "alice", LikeCount: 4}}

	t.Run("retry policy returns ScoringUnavailable", func(t *testing.T) {
		assessor := new(MockAssessor)
		assessor.On("Assess", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("model overloaded"))

		_, err := NewEngine(assessor, "").Score(context.Background(), items)

		var su *errors.ScoringUnavailableError
		require.True(t, stderrors.As(err, &su))
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("fallback scores with zero quality", func(t *testing.T) {
		assessor := new(MockAssessor)
		assessor.On("Assess", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("model overloaded"))

		board, err := NewEngine(assessor, "", WithQualityFallback(true)).Score(context.Background(), items)

		require.NoError(t, err)
		require.Len(t, board, 1)
		assert.InDelta(t, 4.0, board[0].Score, 1e-9)
	})
}

func TestScoreEmptyInput(t *testing.T) {
	board, err := NewEngine(new(MockAssessor), "").Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, board)
}
