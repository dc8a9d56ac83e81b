package funding

import (
	"context"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/shopspring/decimal"
)

// Ledger reports the balance of token held at address.
type Ledger interface {
	Balance(ctx context.Context, token, address string) (decimal.Decimal, error)
}

// Observer decides whether a campaign's escrow holds its bounty.
type Observer struct {
	ledger      Ledger
	callTimeout time.Duration
}

func NewObserver(ledger Ledger, callTimeout time.Duration) *Observer {
	return &Observer{ledger: ledger, callTimeout: callTimeout}
}

// IsFunded compares the escrow balance against the parsed bounty. An invalid
// bounty returns InvalidConfigurationError; a ledger failure returns false
// with a TransientProviderError so the caller retries on the next tick.
// Configuration errors raised by the ledger itself (unknown token) pass through.
func (o *Observer) IsFunded(ctx context.Context, c types.Campaign) (bool, error) {
	target, err := ParseBounty(c.ID, c.Bounty)
	if err != nil {
		return false, err
	}
	if c.EscrowAddress == "" {
		return false, &errors.InvalidConfigurationError{CampaignID: c.ID, Reason: "missing escrow address"}
	}

	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}

	balance, err := o.ledger.Balance(ctx, c.Token, c.EscrowAddress)
	if err != nil {
		if ic, ok := errors.AsInvalidConfiguration(err); ok {
			return false, &errors.InvalidConfigurationError{CampaignID: c.ID, Reason: ic.Reason, Err: ic.Err}
		}
		return false, errors.Transient("funding ledger", err)
	}

	funded := balance.GreaterThanOrEqual(target)
	logger.Debug("Campaign %s escrow %s holds %s %s of %s", c.ID, c.EscrowAddress, balance, c.Token, target)
	return funded, nil
}
