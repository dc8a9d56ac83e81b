package db

import (
	"context"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
)

// ReplaceLeaderboard deletes the campaign's previous rows and inserts entries
// in one transaction.
func (s *DBServiceImpl) ReplaceLeaderboard(ctx context.Context, campaignID string, entries []types.LeaderboardEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &errors.DatabaseError{Operation: "begin leaderboard replace", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard WHERE campaign_id = $1`, campaignID); err != nil {
		return &errors.DatabaseError{Operation: "clear leaderboard", Err: err}
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO leaderboard (campaign_id, rank, author_handle, score, payout_address)
			VALUES ($1, $2, $3, $4, $5)`,
			campaignID, e.Rank, e.AuthorHandle, e.Score, e.PayoutAddress)
		if err != nil {
			return &errors.DatabaseError{Operation: "insert leaderboard entry", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &errors.DatabaseError{Operation: "commit leaderboard replace", Err: err}
	}
	return nil
}

// GetLeaderboard returns up to limit rows of the campaign's leaderboard by rank.
func (s *DBServiceImpl) GetLeaderboard(ctx context.Context, campaignID string, limit int) ([]types.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, author_handle, score, payout_address
		FROM leaderboard
		WHERE campaign_id = $1
		ORDER BY rank
		LIMIT $2`, campaignID, limit)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "get leaderboard", Err: err}
	}
	defer rows.Close()

	leaderboard := []types.LeaderboardEntry{}
	for rows.Next() {
		var e types.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.AuthorHandle, &e.Score, &e.PayoutAddress); err != nil {
			return nil, &errors.DatabaseError{Operation: "scan leaderboard entry", Err: err}
		}
		leaderboard = append(leaderboard, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.DatabaseError{Operation: "iterate leaderboard", Err: err}
	}
	return leaderboard, nil
}
