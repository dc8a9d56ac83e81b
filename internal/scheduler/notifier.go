package scheduler

import (
	"context"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
)

// Notifier is told about every committed transition.
type Notifier interface {
	NotifyTransition(ctx context.Context, t types.Transition) error
}

// Notifiers fans a transition out to each notifier. Failures are logged and
// never undo the transition.
type Notifiers []Notifier

func (n Notifiers) NotifyTransition(ctx context.Context, t types.Transition) error {
	for _, notifier := range n {
		if err := notifier.NotifyTransition(ctx, t); err != nil {
			logger.Warn("Transition notification for campaign %s failed: %v", t.CampaignID, err)
		}
	}
	return nil
}
