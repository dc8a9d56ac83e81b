package social

import (
	"strings"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
)

// IsLikelySpam flags posts stuffed with tags, mentions or cashtags.
func IsLikelySpam(text string) bool {
	hashtags := strings.Count(text, "#")
	mentions := strings.Count(text, "@")
	cashtags := strings.Count(text, "$")

	return hashtags > 1 || mentions > 2 || cashtags > 1 || hashtags+mentions+cashtags > 3
}

// FilterSpam drops items whose text IsLikelySpam, preserving order.
func FilterSpam(items []types.ContentItem) []types.ContentItem {
	kept := make([]types.ContentItem, 0, len(items))
	for _, item := range items {
		if !IsLikelySpam(item.Text) {
			kept = append(kept, item)
		}
	}
	return kept
}
