package db

import (
	"database/sql"
	stderrors "errors"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/db/migrations"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DBOperations abstracts connection setup so tests can inject sqlmock.
type DBOperations interface {
	Open(driverName, dataSourceName string) (*sql.DB, error)
	RunMigrations(db *sql.DB) error
}

// PostgresOperations opens real connections and applies the embedded
// migrations.
type PostgresOperations struct{}

func (PostgresOperations) Open(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

func (PostgresOperations) RunMigrations(db *sql.DB) error {
	return RunMigrations(db)
}

// RunMigrations runs the database migrations
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return &errors.DatabaseError{Operation: "open migration source", Err: err}
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return &errors.DatabaseError{Operation: "could not create the postgres driver", Err: err}
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return &errors.DatabaseError{Operation: "could not create migrate instance", Err: err}
	}

	_, dirty, err := m.Version()
	if err != nil && !stderrors.Is(err, migrate.ErrNilVersion) {
		return &errors.DatabaseError{Operation: "read migration version", Err: err}
	}
	if dirty {
		return &errors.DatabaseError{Operation: "read migration version", Err: stderrors.New("database is in dirty state")}
	}

	if err := m.Migrate(migrations.Version); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return &errors.DatabaseError{Operation: "an error occurred while syncing the database", Err: err}
	}

	logger.Info("Database migrations applied up to version %d", migrations.Version)
	return nil
}
