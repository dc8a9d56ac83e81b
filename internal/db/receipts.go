package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
)

// GetReceipt returns nil when the campaign has no receipt.
func (s *DBServiceImpl) GetReceipt(ctx context.Context, campaignID string) (*types.Receipt, error) {
	var (
		r         = types.Receipt{CampaignID: campaignID}
		status    string
		transfers []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT status, tx_hash, response, transfers, created_at
		FROM payout_receipts
		WHERE campaign_id = $1`, campaignID).Scan(&status, &r.TxHash, &r.Response, &transfers, &r.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &errors.DatabaseError{Operation: "get receipt", Err: err}
	}
	r.Status = types.ReceiptStatus(status)
	if len(transfers) > 0 {
		if err := json.Unmarshal(transfers, &r.Transfers); err != nil {
			return nil, &errors.DatabaseError{Operation: "decode receipt transfers", Err: err}
		}
	}
	return &r, nil
}

// ReserveReceipt writes a pending receipt unless one exists.
func (s *DBServiceImpl) ReserveReceipt(ctx context.Context, campaignID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payout_receipts (campaign_id, status)
		VALUES ($1, $2)
		ON CONFLICT (campaign_id) DO NOTHING`, campaignID, string(types.ReceiptPending))
	if err != nil {
		return false, &errors.DatabaseError{Operation: "reserve receipt", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &errors.DatabaseError{Operation: "reserve receipt", Err: err}
	}
	return n == 1, nil
}

func (s *DBServiceImpl) ConfirmReceipt(ctx context.Context, r types.Receipt) error {
	transfers, err := json.Marshal(r.Transfers)
	if err != nil {
		return &errors.DatabaseError{Operation: "encode receipt transfers", Err: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payout_receipts (campaign_id, status, tx_hash, response, transfers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (campaign_id) DO UPDATE
		SET status = EXCLUDED.status, tx_hash = EXCLUDED.tx_hash, response = EXCLUDED.response,
		    transfers = EXCLUDED.transfers, created_at = EXCLUDED.created_at`,
		r.CampaignID, string(types.ReceiptConfirmed), r.TxHash, r.Response, transfers, r.CreatedAt)
	if err != nil {
		return &errors.DatabaseError{Operation: "confirm receipt", Err: err}
	}
	return nil
}

// ReleaseReceipt drops a pending reservation. Confirmed receipts are kept.
func (s *DBServiceImpl) ReleaseReceipt(ctx context.Context, campaignID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM payout_receipts
		WHERE campaign_id = $1 AND status = $2`, campaignID, string(types.ReceiptPending))
	if err != nil {
		return &errors.DatabaseError{Operation: "release receipt", Err: err}
	}
	return nil
}
