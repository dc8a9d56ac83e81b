package db

import (
	"context"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/store"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/google/uuid"
)

// DBService interface defines the methods we need from the database
type DBService interface {
	GetByPartition(ctx context.Context, partition string) ([]store.Record, error)
	Create(ctx context.Context, record store.Record) error
	Remove(ctx context.Context, id uuid.UUID) error
	MoveRecord(ctx context.Context, from uuid.UUID, to store.Record) error

	ReplaceLeaderboard(ctx context.Context, campaignID string, entries []types.LeaderboardEntry) error
	GetLeaderboard(ctx context.Context, campaignID string, limit int) ([]types.LeaderboardEntry, error)

	GetReceipt(ctx context.Context, campaignID string) (*types.Receipt, error)
	ReserveReceipt(ctx context.Context, campaignID string) (bool, error)
	ConfirmReceipt(ctx context.Context, receipt types.Receipt) error
	ReleaseReceipt(ctx context.Context, campaignID string) error

	Close() error
}
