package feedback

import (
	"context"
	"fmt"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/pkg/database"
	"github.com/jmoiron/sqlx"
)

// Schema creates the corrections table. Constraint names are matched by database.MapPQError.
const Schema = `
	CREATE TABLE IF NOT EXISTS user_corrections (
		id BIGSERIAL PRIMARY KEY,
		field VARCHAR(32) NOT NULL,
		original TEXT NOT NULL,
		corrected TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT user_corrections_field_valid CHECK (field IN (
			'Printer Name', 'Ink Type', 'Ink Number', 'Date',
			'Department', 'Recipient Name', 'Employee ID', 'Deliverer Name'
		)),
		CONSTRAINT user_corrections_values_differ CHECK (original <> corrected)
	)
`

// PostgresPersister keeps the correction log in the user_corrections table
type PostgresPersister struct {
	db *database.DB
}

// NewPostgresPersister creates a Postgres-backed persister
func NewPostgresPersister(db *database.DB) *PostgresPersister {
	return &PostgresPersister{db: db}
}

// EnsureSchema creates the table when it does not exist yet
func (p *PostgresPersister) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create user_corrections: %w", err)
	}
	return nil
}

// Load returns the log oldest first
func (p *PostgresPersister) Load(ctx context.Context) ([]domain.UserCorrection, error) {
	var entries []domain.UserCorrection
	query := `
		SELECT field, original, corrected, created_at
		FROM user_corrections
		ORDER BY created_at ASC, id ASC
	`

	if err := p.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, mapError("load corrections", err)
	}

	return entries, nil
}

// Save replaces the table contents with entries in one transaction
func (p *PostgresPersister) Save(ctx context.Context, entries []domain.UserCorrection) error {
	err := p.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_corrections`); err != nil {
			return err
		}

		for _, e := range entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO user_corrections (field, original, corrected, created_at)
				VALUES ($1, $2, $3, $4)
			`, string(e.Field), e.Original, e.Corrected, e.Timestamp)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapError("save corrections", err)
	}
	return nil
}

func mapError(op string, err error) error {
	if appErr := database.MapPQError(err); appErr != nil {
		return fmt.Errorf("%s: %w", op, appErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}
