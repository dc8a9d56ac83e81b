package social

import (
	"context"
	"strings"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
)

// DefaultMaxPages bounds a single collection run.
const DefaultMaxPages = 500

// Searcher fetches one page of content tagged with tag. An empty next cursor
// or an empty page ends the stream.
type Searcher interface {
	Search(ctx context.Context, tag string, pageSize int, cursor string) (items []types.ContentItem, next string, err error)
}

type collectConfig struct {
	pageDelay time.Duration
	maxPages  int
}

type CollectOption func(*collectConfig)

// WithPageDelay waits between page requests to stay under platform rate limits.
func WithPageDelay(d time.Duration) CollectOption {
	return func(c *collectConfig) { c.pageDelay = d }
}

func WithMaxPages(n int) CollectOption {
	return func(c *collectConfig) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// Collect pages through every item tagged with tag until a page comes back
// empty. Items seen on an earlier page are dropped.
func Collect(ctx context.Context, s Searcher, tag string, pageSize int, opts ...CollectOption) ([]types.ContentItem, error) {
	cfg := collectConfig{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(&cfg)
	}

	tag = NormalizeTag(tag)
	var (
		all    []types.ContentItem
		seen   = make(map[string]struct{})
		cursor string
	)

	for page := 0; page < cfg.maxPages; page++ {
		if page > 0 && cfg.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.pageDelay):
			}
		}

		items, next, err := s.Search(ctx, tag, pageSize, cursor)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			all = append(all, item)
		}

		if next == "" || next == cursor {
			break
		}
		cursor = next
	}

	logger.Debug("Collected %d items for %s", len(all), tag)
	return all, nil
}

// NormalizeTag returns tag with exactly one leading '#'.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	return "#" + strings.TrimLeft(tag, "#")
}
