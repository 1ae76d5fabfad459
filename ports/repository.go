package ports

import (
	"context"
	"time"
)

// ReportRecord is the persisted form of a validation run: headline estimates
// plus the serialized per-iteration detail.
type ReportRecord struct {
	RunID            string    `db:"run_id" json:"run_id"`
	ModelName        string    `db:"model_name" json:"model_name"`
	Iterations       int       `db:"iterations" json:"iterations"`
	Degenerate       int       `db:"degenerate" json:"degenerate"`
	Seed             int64     `db:"seed" json:"seed"`
	OptimismMode     string    `db:"optimism_mode" json:"optimism_mode"`
	ApparentROCAUC   float64   `db:"apparent_roc_auc" json:"apparent_roc_auc"`
	OptimismROCAUC   float64   `db:"optimism_roc_auc" json:"optimism_roc_auc"`
	CorrectedROCAUC  float64   `db:"corrected_roc_auc" json:"corrected_roc_auc"`
	ApparentPRAUC    float64   `db:"apparent_pr_auc" json:"apparent_pr_auc"`
	OptimismPRAUC    float64   `db:"optimism_pr_auc" json:"optimism_pr_auc"`
	CorrectedPRAUC   float64   `db:"corrected_pr_auc" json:"corrected_pr_auc"`
	IterationDetail  []byte    `db:"iteration_detail" json:"-"` // JSON, per-iteration metrics
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry ranks persisted model runs by corrected ROC-AUC.
type LeaderboardEntry struct {
	RunID           string    `db:"run_id" json:"run_id"`
	ModelName       string    `db:"model_name" json:"model_name"`
	CorrectedROCAUC float64   `db:"corrected_roc_auc" json:"corrected_roc_auc"`
	CorrectedPRAUC  float64   `db:"corrected_pr_auc" json:"corrected_pr_auc"`
	Iterations      int       `db:"iterations" json:"iterations"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ReportRepository persists validation reports and serves the leaderboard.
type ReportRepository interface {
	SaveReport(ctx context.Context, record ReportRecord) error
	LatestReport(ctx context.Context) (*ReportRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// PredictionRecord is one audited prediction request/response pair.
type PredictionRecord struct {
	ID          string    `db:"id" json:"id"`
	ModelName   string    `db:"model_name" json:"model_name"`
	Probability float64   `db:"probability" json:"probability"`
	RiskTier    string    `db:"risk_tier" json:"risk_tier"`
	Features    []byte    `db:"features" json:"-"` // JSON patient profile
	Effects     []byte    `db:"effects" json:"-"`  // JSON feature effects
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PredictionLogRepository records served predictions for audit.
type PredictionLogRepository interface {
	LogPrediction(ctx context.Context, record PredictionRecord) error
}
