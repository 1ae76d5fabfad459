package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	apperrors "plaquerisk/internal/errors"
	"plaquerisk/ports"
)

// PredictionLogRepositoryImpl implements ports.PredictionLogRepository for PostgreSQL
type PredictionLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewPredictionLogRepository creates a new PostgreSQL prediction log repository
func NewPredictionLogRepository(db *sqlx.DB) ports.PredictionLogRepository {
	return &PredictionLogRepositoryImpl{db: db}
}

// LogPrediction records one served prediction for audit
func (r *PredictionLogRepositoryImpl) LogPrediction(ctx context.Context, record ports.PredictionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prediction_log (id, model_name, probability, risk_tier, features, effects, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.ModelName, record.Probability, record.RiskTier,
		record.Features, record.Effects, record.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to log prediction")
	}
	return nil
}
