package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 500
)

// CampaignLister is the read side of the campaign store.
type CampaignLister interface {
	List(ctx context.Context, state types.State) ([]types.Campaign, error)
}

// AuditReader exposes persisted leaderboards and payout receipts.
type AuditReader interface {
	GetLeaderboard(ctx context.Context, campaignID string, limit int) ([]types.LeaderboardEntry, error)
	GetReceipt(ctx context.Context, campaignID string) (*types.Receipt, error)
}

type Handler struct {
	campaigns CampaignLister
	audit     AuditReader
}

func NewHandler(campaigns CampaignLister, audit AuditReader) *Handler {
	return &Handler{campaigns: campaigns, audit: audit}
}

// ListCampaigns handles GET /campaigns?state=
func (h *Handler) ListCampaigns(c *gin.Context) {
	state := types.State(c.DefaultQuery("state", string(types.StateActive)))
	if !state.Valid() {
		c.Error(&errors.APIError{StatusCode: http.StatusBadRequest, Message: "Unknown campaign state"})
		return
	}

	campaigns, err := h.campaigns.List(c.Request.Context(), state)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state, "campaigns": campaigns})
}

// GetLeaderboard handles GET /campaigns/:id/leaderboard?limit=
func (h *Handler) GetLeaderboard(c *gin.Context) {
	id := c.Param("id")

	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.Error(&errors.APIError{StatusCode: http.StatusBadRequest, Message: "limit must be a positive integer", Err: err})
			return
		}
		limit = n
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := h.audit.GetLeaderboard(c.Request.Context(), id, limit)
	if err != nil {
		c.Error(err)
		return
	}
	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"campaignId": id, "leaderboard": entries})
}

// GetReceipt handles GET /campaigns/:id/receipt
func (h *Handler) GetReceipt(c *gin.Context) {
	id := c.Param("id")

	receipt, err := h.audit.GetReceipt(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if receipt == nil {
		c.Error(&errors.NotFoundError{Resource: "receipt", Identifier: id})
		return
	}

	c.JSON(http.StatusOK, receipt)
}
