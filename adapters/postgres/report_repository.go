package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	apperrors "plaquerisk/internal/errors"
	"plaquerisk/ports"
)

// ReportRepositoryImpl implements ports.ReportRepository for PostgreSQL
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// SaveReport persists one validation run
func (r *ReportRepositoryImpl) SaveReport(ctx context.Context, record ports.ReportRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO validation_reports (
			run_id, model_name, iterations, degenerate, seed, optimism_mode,
			apparent_roc_auc, optimism_roc_auc, corrected_roc_auc,
			apparent_pr_auc, optimism_pr_auc, corrected_pr_auc,
			iteration_detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, record.RunID, record.ModelName, record.Iterations, record.Degenerate,
		record.Seed, record.OptimismMode,
		record.ApparentROCAUC, record.OptimismROCAUC, record.CorrectedROCAUC,
		record.ApparentPRAUC, record.OptimismPRAUC, record.CorrectedPRAUC,
		record.IterationDetail, record.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to save validation report")
	}
	return nil
}

// LatestReport returns the most recent validation run, or a NOT_FOUND error
func (r *ReportRepositoryImpl) LatestReport(ctx context.Context) (*ports.ReportRecord, error) {
	var record ports.ReportRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT run_id, model_name, iterations, degenerate, seed, optimism_mode,
			apparent_roc_auc, optimism_roc_auc, corrected_roc_auc,
			apparent_pr_auc, optimism_pr_auc, corrected_pr_auc,
			iteration_detail, created_at
		FROM validation_reports
		ORDER BY created_at DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("validation report")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load latest validation report")
	}
	return &record, nil
}

// Leaderboard lists runs ranked by corrected ROC-AUC
func (r *ReportRepositoryImpl) Leaderboard(ctx context.Context, limit int) ([]ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []ports.LeaderboardEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT run_id, model_name, corrected_roc_auc, corrected_pr_auc,
			iterations, created_at
		FROM validation_reports
		ORDER BY corrected_roc_auc DESC, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load leaderboard")
	}
	return entries, nil
}
