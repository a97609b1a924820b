package database

import (
	"context"
	"fmt"
	"time"

	"github.com/formflow/formflow-backend/pkg/config"
	"github.com/formflow/formflow-backend/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// DB is a PostgreSQL pool used by the feedback persister
type DB struct {
	*sqlx.DB
	log *logger.Logger
}

// Open connects to PostgreSQL and verifies the pool before returning
func Open(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	sqlDB, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("connected to database")

	return Wrap(sqlDB, log), nil
}

// Wrap adopts an existing sqlx handle, typically one backed by sqlmock.
func Wrap(db *sqlx.DB, log *logger.Logger) *DB {
	return &DB{DB: db, log: log.WithComponent("database")}
}

// Health pings the pool and reports pool usage alongside the result
func (db *DB) Health(ctx context.Context) map[string]interface{} {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := db.Stats()
	status := map[string]interface{}{
		"status":     "up",
		"open_conns": stats.OpenConnections,
		"in_use":     stats.InUse,
		"wait_count": stats.WaitCount,
	}
	if err := db.PingContext(ctx); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}
	return status
}

// Transaction runs fn inside a transaction. fn's error triggers a rollback
// and is returned unchanged so callers can still map driver errors.
func (db *DB) Transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
