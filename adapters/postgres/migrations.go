// Package postgres persists validation reports, the model leaderboard, and a
// prediction audit log via sqlx.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"plaquerisk/internal/errors"
)

// Migrate ensures the schema exists. Statements are idempotent so startup
// can always run them.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS validation_reports (
			run_id            TEXT PRIMARY KEY,
			model_name        TEXT NOT NULL,
			iterations        INTEGER NOT NULL,
			degenerate        INTEGER NOT NULL,
			seed              BIGINT NOT NULL,
			optimism_mode     TEXT NOT NULL,
			apparent_roc_auc  DOUBLE PRECISION NOT NULL,
			optimism_roc_auc  DOUBLE PRECISION NOT NULL,
			corrected_roc_auc DOUBLE PRECISION NOT NULL,
			apparent_pr_auc   DOUBLE PRECISION NOT NULL,
			optimism_pr_auc   DOUBLE PRECISION NOT NULL,
			corrected_pr_auc  DOUBLE PRECISION NOT NULL,
			iteration_detail  JSONB,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_validation_reports_created_at
			ON validation_reports (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS prediction_log (
			id          TEXT PRIMARY KEY,
			model_name  TEXT NOT NULL,
			probability DOUBLE PRECISION NOT NULL,
			risk_tier   TEXT NOT NULL,
			features    JSONB,
			effects     JSONB,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "schema migration failed")
		}
	}
	return nil
}
