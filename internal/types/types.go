package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// State is a campaign lifecycle state. Each state is its own storage partition.
type State string

const (
	StateActive    State = "active"
	StateStarted   State = "started"
	StateCompleted State = "completed"
)

// States lists every lifecycle state in scheduler pass order.
var States = []State{StateActive, StateStarted, StateCompleted}

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateActive, StateStarted, StateCompleted:
		return true
	}
	return false
}

type Campaign struct {
	ID            string    `json:"id"`
	Token         string    `json:"token"`
	Bounty        string    `json:"bounty"`
	Hashtag       string    `json:"hashtag"`
	EscrowAddress string    `json:"escrowAddress"`
	WalletHandle  string    `json:"walletHandle"`
	CreatedAt     time.Time `json:"createdAt"`
	State         State     `json:"state"`
}

// ContentItem is one observed post carrying the campaign hashtag.
type ContentItem struct {
	ID              string `json:"id"`
	AuthorHandle    string `json:"authorHandle"`
	Text            string `json:"text"`
	ImpressionCount int64  `json:"impressionCount"`
	LikeCount       int64  `json:"likeCount"`
	ShareCount      int64  `json:"shareCount"`
	ReplyCount      int64  `json:"replyCount"`
	AuthorPublicKey string `json:"authorPublicKey"`
}

// QualityScore maps a ContentItem id to an externally assessed score in [0,100].
type QualityScore map[string]int

type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	AuthorHandle  string  `json:"authorHandle"`
	Score         float64 `json:"score"`
	PayoutAddress string  `json:"payoutAddress,omitempty"`
}

// Transition records a committed move between partitions.
type Transition struct {
	CampaignID string    `json:"campaignId"`
	Token      string    `json:"token"`
	From       State     `json:"from"`
	To         State     `json:"to"`
	At         time.Time `json:"at"`
}

// Transfer is a single payout instruction.
type Transfer struct {
	AuthorHandle string          `json:"authorHandle"`
	Address      string          `json:"address"`
	Amount       decimal.Decimal `json:"amount"`
}

// ReceiptStatus tracks a payout from reservation to confirmation.
type ReceiptStatus string

const (
	// ReceiptPending is written before the execution call and blocks a
	// second attempt until an operator reconciles it.
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptConfirmed ReceiptStatus = "confirmed"
)

// Receipt is the proof of an accepted payout.
type Receipt struct {
	CampaignID string        `json:"campaignId"`
	Status     ReceiptStatus `json:"status"`
	TxHash     string        `json:"txHash"`
	Response   string        `json:"response"`
	Transfers  []Transfer    `json:"transfers,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}
