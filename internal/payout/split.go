package payout

import (
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/shopspring/decimal"
)

const (
	DefaultFeePercent = 5
	DefaultTopN       = 10
	// AmountDecimals is the precision every transfer amount is rounded down to.
	AmountDecimals = 6
)

var hundred = decimal.NewFromInt(100)

// Pool is the bounty left for participants after the platform fee.
func Pool(bounty, feePercent decimal.Decimal) decimal.Decimal {
	return bounty.Mul(decimal.NewFromInt(1).Sub(feePercent.Div(hundred)))
}

// Split divides pool among the first topN leaderboard entries that have a
// positive score and a payout address, proportionally to score. Amounts are
// rounded down so the transfers never exceed pool.
func Split(pool decimal.Decimal, leaderboard []types.LeaderboardEntry, topN int) []types.Transfer {
	var eligible []types.LeaderboardEntry
	for _, e := range leaderboard {
		if len(eligible) == topN {
			break
		}
		if e.Score > 0 && e.PayoutAddress != "" {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 || !pool.IsPositive() {
		return nil
	}

	total := decimal.Zero
	for _, e := range eligible {
		total = total.Add(decimal.NewFromFloat(e.Score))
	}

	transfers := make([]types.Transfer, 0, len(eligible))
	for _, e := range eligible {
		amount := pool.Mul(decimal.NewFromFloat(e.Score)).Div(total).RoundDown(AmountDecimals)
		if !amount.IsPositive() {
			continue
		}
		transfers = append(transfers, types.Transfer{
			AuthorHandle: e.AuthorHandle,
			Address:      e.PayoutAddress,
			Amount:       amount,
		})
	}
	return transfers
}
