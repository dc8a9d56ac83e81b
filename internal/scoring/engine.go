package scoring

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
)

// Engagement weights per unit.
const (
	ImpressionWeight = 0.01
	LikeWeight       = 1.0
	ShareWeight      = 4.0
	ReplyWeight      = 2.0
)

// DefaultBatchSize is the largest number of items sent to the quality
// assessor in one call.
const DefaultBatchSize = 50

// QualityAssessor rates content quality. Results are untrusted: entries may be
// missing or out of range.
type QualityAssessor interface {
	Assess(ctx context.Context, items []types.ContentItem) (types.QualityScore, error)
}

// ScoredItem pairs a content item with its final score.
type ScoredItem struct {
	Item  types.ContentItem
	Score float64
}

type Engine struct {
	assessor       QualityAssessor
	operatorHandle string
	batchSize      int
	callTimeout    time.Duration
	fallback       bool
}

type Option func(*Engine)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithCallTimeout bounds every assessor call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callTimeout = d }
}

// WithQualityFallback scores a batch with zero quality when the assessor
// fails, instead of returning ScoringUnavailableError.
func WithQualityFallback(enabled bool) Option {
	return func(e *Engine) { e.fallback = enabled }
}

// NewEngine builds a score engine. A nil assessor disables the quality
// multiplier. Items authored by operatorHandle never score.
func NewEngine(assessor QualityAssessor, operatorHandle string, opts ...Option) *Engine {
	e := &Engine{
		assessor:       assessor,
		operatorHandle: normalizeHandle(operatorHandle),
		batchSize:      DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Points is the raw engagement score of one item.
func Points(item types.ContentItem) float64 {
	return float64(item.ImpressionCount)*ImpressionWeight +
		float64(item.LikeCount)*LikeWeight +
		float64(item.ShareCount)*ShareWeight +
		float64(item.ReplyCount)*ReplyWeight
}

// Multiplier converts a quality score into a scaling factor in [1,2].
func Multiplier(quality int) float64 {
	if quality < 0 {
		quality = 0
	}
	if quality > 100 {
		quality = 100
	}
	return 1 + float64(quality)/100
}

// Score ranks the authors of items. Batches are scored in order and the
// results concatenated before aggregation.
func (e *Engine) Score(ctx context.Context, items []types.ContentItem) ([]types.LeaderboardEntry, error) {
	eligible := e.filter(items)

	scored := make([]ScoredItem, 0, len(eligible))
	for _, chunk := range Chunk(eligible, e.batchSize) {
		quality, err := e.assess(ctx, chunk)
		if err != nil {
			if !e.fallback {
				return nil, &errors.ScoringUnavailableError{Err: err}
			}
			logger.Warn("Quality assessment failed for %d items, scoring without quality: %v", len(chunk), err)
			quality = nil
		}
		scored = append(scored, ScoreItems(chunk, quality)...)
	}

	return Aggregate(scored), nil
}

func (e *Engine) filter(items []types.ContentItem) []types.ContentItem {
	out := make([]types.ContentItem, 0, len(items))
	for _, item := range items {
		if e.operatorHandle != "" && normalizeHandle(item.AuthorHandle) == e.operatorHandle {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (e *Engine) assess(ctx context.Context, chunk []types.ContentItem) (types.QualityScore, error) {
	if e.assessor == nil {
		return nil, nil
	}
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	return e.assessor.Assess(ctx, chunk)
}

// ScoreItems applies the engagement weights and quality multiplier to items.
func ScoreItems(items []types.ContentItem, quality types.QualityScore) []ScoredItem {
	out := make([]ScoredItem, len(items))
	for i, item := range items {
		out[i] = ScoredItem{
			Item:  item,
			Score: Points(item) * Multiplier(quality[item.ID]),
		}
	}
	return out
}

// Aggregate sums scores per author and ranks authors by total, highest first.
// Equal totals keep the order in which authors first appear in scored.
func Aggregate(scored []ScoredItem) []types.LeaderboardEntry {
	index := make(map[string]int)
	var board []types.LeaderboardEntry
	for _, s := range scored {
		i, ok := index[s.Item.AuthorHandle]
		if !ok {
			i = len(board)
			index[s.Item.AuthorHandle] = i
			board = append(board, types.LeaderboardEntry{AuthorHandle: s.Item.AuthorHandle})
		}
		board[i].Score += s.Score
		if board[i].PayoutAddress == "" {
			board[i].PayoutAddress = s.Item.AuthorPublicKey
		}
	}

	sort.SliceStable(board, func(a, b int) bool {
		return board[a].Score > board[b].Score
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board
}

// Chunk splits items into ordered slices of at most size elements.
func Chunk(items []types.ContentItem, size int) [][]types.ContentItem {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var chunks [][]types.ContentItem
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

func normalizeHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}
