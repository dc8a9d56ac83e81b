package payout

import (
	"bytes"
	"context"
	"text/template"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/funding"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/social"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	ActionDistribute = "distribute"
	// AnnouncedEntries is how many leaderboard rows the closing post lists.
	AnnouncedEntries = 10
)

// Executor runs an action on the custodial execution service and returns its
// free-text reply.
type Executor interface {
	Execute(ctx context.Context, action string, params interface{}) (string, error)
}

// Scorer turns collected content into a ranked leaderboard.
type Scorer interface {
	Score(ctx context.Context, items []types.ContentItem) ([]types.LeaderboardEntry, error)
}

// AuditStore keeps the last computed leaderboard per campaign.
type AuditStore interface {
	ReplaceLeaderboard(ctx context.Context, campaignID string, entries []types.LeaderboardEntry) error
}

// ReceiptStore records payouts. GetReceipt returns nil without error when the
// campaign has none. ReserveReceipt returns false if a receipt already exists.
type ReceiptStore interface {
	GetReceipt(ctx context.Context, campaignID string) (*types.Receipt, error)
	ReserveReceipt(ctx context.Context, campaignID string) (bool, error)
	ConfirmReceipt(ctx context.Context, receipt types.Receipt) error
	ReleaseReceipt(ctx context.Context, campaignID string) error
}

// LeaderboardPublisher pushes a freshly computed leaderboard to live viewers.
type LeaderboardPublisher interface {
	BroadcastLeaderboard(campaignID string, entries []types.LeaderboardEntry) error
}

type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// DistributeParams is the payload of the distribute action.
type DistributeParams struct {
	Wallet    string           `json:"wallet"`
	Token     string           `json:"token"`
	Transfers []types.Transfer `json:"transfers"`
}

// LeaderboardView is the data passed to the leaderboard template.
type LeaderboardView struct {
	Campaign types.Campaign
	Hashtag  string
	Entries  []types.LeaderboardEntry
}

type Options struct {
	Searcher  social.Searcher
	Scorer    Scorer
	Executor  Executor
	Audit     AuditStore
	Receipts  ReceiptStore
	Announcer Announcer
	Publisher LeaderboardPublisher

	// LeaderboardTemplate renders the closing post; nil disables it.
	LeaderboardTemplate *template.Template

	PageSize       int
	CollectOptions []social.CollectOption
	SpamFilter     bool
	TopN           int
	FeePercent     decimal.Decimal
	CallTimeout    time.Duration
	Now            func() time.Time
}

// Dispatcher computes the final leaderboard of a campaign and pays it out at
// most once.
type Dispatcher struct {
	opts Options
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.FeePercent.IsNegative() {
		opts.FeePercent = decimal.Zero
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{opts: opts}
}

// Dispatch settles campaign c. A confirmed receipt is returned as is without
// touching the executor; a pending one is rejected until reconciled.
func (d *Dispatcher) Dispatch(ctx context.Context, c types.Campaign) (types.Receipt, error) {
	existing, err := d.opts.Receipts.GetReceipt(ctx, c.ID)
	if err != nil {
		return types.Receipt{}, err
	}
	if existing != nil {
		if existing.Status == types.ReceiptConfirmed {
			logger.Info("Campaign %s already paid out in %s", c.ID, existing.TxHash)
			return *existing, nil
		}
		return types.Receipt{}, &errors.PayoutRejectedError{CampaignID: c.ID, Reason: "previous payout attempt awaits reconciliation"}
	}

	items, err := social.Collect(ctx, timeoutSearcher{d.opts.Searcher, d.opts.CallTimeout}, c.Hashtag, d.opts.PageSize, d.opts.CollectOptions...)
	if err != nil {
		return types.Receipt{}, err
	}
	if d.opts.SpamFilter {
		items = social.FilterSpam(items)
	}

	leaderboard, err := d.opts.Scorer.Score(ctx, items)
	if err != nil {
		return types.Receipt{}, err
	}

	auditCtx, cancel := d.withTimeout(ctx)
	err = d.opts.Audit.ReplaceLeaderboard(auditCtx, c.ID, leaderboard)
	cancel()
	if err != nil {
		return types.Receipt{}, err
	}
	logger.Info("Campaign %s leaderboard has %d entries from %d items", c.ID, len(leaderboard), len(items))
	if d.opts.Publisher != nil {
		if err := d.opts.Publisher.BroadcastLeaderboard(c.ID, leaderboard); err != nil {
			logger.Warn("Campaign %s leaderboard broadcast failed: %v", c.ID, err)
		}
	}

	return d.Payout(ctx, c, leaderboard)
}

// Payout splits the campaign pool over leaderboard and executes the transfer.
func (d *Dispatcher) Payout(ctx context.Context, c types.Campaign, leaderboard []types.LeaderboardEntry) (types.Receipt, error) {
	if c.WalletHandle == "" {
		return types.Receipt{}, &errors.InvalidConfigurationError{CampaignID: c.ID, Reason: "missing wallet handle"}
	}
	bounty, err := funding.ParseBounty(c.ID, c.Bounty)
	if err != nil {
		return types.Receipt{}, err
	}

	transfers := Split(Pool(bounty, d.opts.FeePercent), leaderboard, d.opts.TopN)
	if len(transfers) == 0 {
		return types.Receipt{}, &errors.PayoutRejectedError{CampaignID: c.ID, Reason: "no eligible recipients"}
	}

	reserved, err := d.opts.Receipts.ReserveReceipt(ctx, c.ID)
	if err != nil {
		return types.Receipt{}, err
	}
	if !reserved {
		return types.Receipt{}, &errors.PayoutRejectedError{CampaignID: c.ID, Reason: "payout already in progress"}
	}

	execCtx, cancel := d.withTimeout(ctx)
	text, err := d.opts.Executor.Execute(execCtx, ActionDistribute, DistributeParams{
		Wallet:    c.WalletHandle,
		Token:     c.Token,
		Transfers: transfers,
	})
	cancel()
	if err != nil {
		d.release(ctx, c.ID)
		return types.Receipt{}, err
	}

	txHash, err := ParseResponse(text)
	if err != nil {
		d.release(ctx, c.ID)
		return types.Receipt{}, &errors.PayoutRejectedError{CampaignID: c.ID, Reason: err.Error()}
	}

	receipt := types.Receipt{
		CampaignID: c.ID,
		Status:     types.ReceiptConfirmed,
		TxHash:     txHash,
		Response:   text,
		Transfers:  transfers,
		CreatedAt:  d.opts.Now().UTC(),
	}
	if err := d.opts.Receipts.ConfirmReceipt(ctx, receipt); err != nil {
		// The transfer went out; the pending reservation still blocks a repeat.
		logger.Error("Campaign %s paid out in %s but the receipt was not confirmed: %v", c.ID, txHash, err)
	}
	logger.Info("Campaign %s paid %d recipients, tx %s", c.ID, len(transfers), txHash)

	d.announce(ctx, c, leaderboard)
	return receipt, nil
}

func (d *Dispatcher) release(ctx context.Context, campaignID string) {
	if err := d.opts.Receipts.ReleaseReceipt(ctx, campaignID); err != nil {
		logger.Error("Failed to release payout reservation for campaign %s: %v", campaignID, err)
	}
}

func (d *Dispatcher) announce(ctx context.Context, c types.Campaign, leaderboard []types.LeaderboardEntry) {
	if d.opts.Announcer == nil || d.opts.LeaderboardTemplate == nil {
		return
	}
	text, err := RenderLeaderboard(d.opts.LeaderboardTemplate, c, leaderboard)
	if err != nil {
		logger.Warn("Campaign %s leaderboard template failed: %v", c.ID, err)
		return
	}

	postCtx, cancel := d.withTimeout(ctx)
	defer cancel()
	if err := d.opts.Announcer.Announce(postCtx, text); err != nil {
		logger.Warn("Campaign %s leaderboard announcement failed: %v", c.ID, err)
	}
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.opts.CallTimeout)
}

// RenderLeaderboard executes tmpl over the top AnnouncedEntries rows.
func RenderLeaderboard(tmpl *template.Template, c types.Campaign, leaderboard []types.LeaderboardEntry) (string, error) {
	top := leaderboard
	if len(top) > AnnouncedEntries {
		top = top[:AnnouncedEntries]
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, LeaderboardView{Campaign: c, Hashtag: social.NormalizeTag(c.Hashtag), Entries: top}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type timeoutSearcher struct {
	social.Searcher
	timeout time.Duration
}

func (s timeoutSearcher) Search(ctx context.Context, tag string, pageSize int, cursor string) ([]types.ContentItem, string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.Searcher.Search(ctx, tag, pageSize, cursor)
}
