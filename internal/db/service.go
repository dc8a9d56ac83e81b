package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/store"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/google/uuid"
)

// DBServiceImpl implements the DBService interface
type DBServiceImpl struct {
	db *sql.DB
}

// NewDBService creates and returns a new DBService
func NewDBService(ops DBOperations, cfg configs.Postgres) (DBService, error) {
	db, err := ops.Open("postgres", cfg.Addr.String())
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "open connection", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &errors.DatabaseError{Operation: "ping database", Err: err}
	}

	if cfg.RunMigrations {
		if err := ops.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DBServiceImpl{db: db}, nil
}

// GetByPartition returns every memory record of partition, oldest first.
func (s *DBServiceImpl) GetByPartition(ctx context.Context, partition string) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, partition, content
		FROM campaign_memories
		WHERE partition = $1
		ORDER BY created_at, id`, partition)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "get memories", Err: err}
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var (
			rec     store.Record
			content []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Partition, &content); err != nil {
			return nil, &errors.DatabaseError{Operation: "scan memory", Err: err}
		}
		if err := json.Unmarshal(content, &rec.Campaign); err != nil {
			logger.Warn("Skipping memory %s with unreadable content: %v", rec.ID, err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.DatabaseError{Operation: "iterate memories", Err: err}
	}
	return records, nil
}

// Create inserts record. Inserting an existing id is a no-op.
func (s *DBServiceImpl) Create(ctx context.Context, record store.Record) error {
	return insertMemory(ctx, s.db, record)
}

// Remove deletes the memory with id.
func (s *DBServiceImpl) Remove(ctx context.Context, id uuid.UUID) error {
	return deleteMemory(ctx, s.db, id)
}

// MoveRecord writes to and deletes from in one transaction.
func (s *DBServiceImpl) MoveRecord(ctx context.Context, from uuid.UUID, to store.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &errors.DatabaseError{Operation: "begin move", Err: err}
	}
	defer tx.Rollback()

	if err := insertMemory(ctx, tx, to); err != nil {
		return err
	}
	if err := deleteMemory(ctx, tx, from); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &errors.DatabaseError{Operation: "commit move", Err: err}
	}
	return nil
}

func (s *DBServiceImpl) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertMemory(ctx context.Context, db execer, record store.Record) error {
	content, err := json.Marshal(record.Campaign)
	if err != nil {
		return &errors.DatabaseError{Operation: "encode memory", Err: err}
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO campaign_memories (id, partition, campaign_id, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		record.ID, record.Partition, record.Campaign.ID, content)
	if err != nil {
		return &errors.DatabaseError{Operation: "create memory", Err: err}
	}
	return nil
}

func deleteMemory(ctx context.Context, db execer, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM campaign_memories WHERE id = $1`, id)
	if err != nil {
		return &errors.DatabaseError{Operation: "remove memory", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &errors.DatabaseError{Operation: "remove memory", Err: err}
	}
	if n == 0 {
		return &errors.NotFoundError{Resource: "memory record", Identifier: id.String()}
	}
	return nil
}
