package app

import (
	"context"
	"encoding/json"
	"time"

	"plaquerisk/domain/cohort"
	"plaquerisk/domain/explain"
	"plaquerisk/domain/validation"
	"plaquerisk/internal"
	apperrors "plaquerisk/internal/errors"
	"plaquerisk/ports"
)

// TrainingRequest carries the knobs for one training/validation run.
// Zero values fall back to the engine defaults.
type TrainingRequest struct {
	CohortPath string
	ModelName  string
	Iterations int
	Seed       int64
	Mode       validation.OptimismMode
	Workers    int
}

// TrainingResult bundles everything a prediction service needs from a
// completed run: the optimism-corrected report plus the final model fitted
// on the full cohort and the reference profile derived from it.
type TrainingResult struct {
	Report   *validation.Report
	Model    ports.Classifier
	Baseline cohort.Profile
	Features []string
}

// TrainingService reads a cohort, runs bootstrap validation, fits the final
// classifier and persists the report.
type TrainingService struct {
	reader    ports.CohortReader
	engine    *validation.Engine
	factory   ports.ClassifierFactory
	baselines *explain.BaselineBuilder
	reports   ports.ReportRepository
	logger    *internal.Logger
}

func NewTrainingService(
	reader ports.CohortReader,
	engine *validation.Engine,
	factory ports.ClassifierFactory,
	reports ports.ReportRepository,
	logger *internal.Logger,
) *TrainingService {
	return &TrainingService{
		reader:    reader,
		engine:    engine,
		factory:   factory,
		baselines: explain.NewBaselineBuilder(),
		reports:   reports,
		logger:    logger.WithComponent("training"),
	}
}

func (s *TrainingService) Run(ctx context.Context, req TrainingRequest) (*TrainingResult, error) {
	start := time.Now()

	dataset, err := s.reader.ReadCohort(ctx, req.CohortPath)
	if err != nil {
		return nil, err
	}
	positives, _ := dataset.LabelCounts()
	s.logger.Info("cohort loaded: %d patients, %d features, %d positive", dataset.Len(), len(dataset.Features), positives)

	cfg := validation.Config{
		Iterations: req.Iterations,
		Seed:       req.Seed,
		Mode:       req.Mode,
		Workers:    req.Workers,
		Progress: func(completed, total int) {
			s.logger.Info("bootstrap progress %d/%d", completed, total)
		},
	}

	report, err := s.engine.Run(ctx, dataset, s.factory, cfg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("validation complete: corrected ROC-AUC %.4f, corrected PR-AUC %.4f (%d/%d iterations usable, %s)",
		report.ROCAUC.Corrected, report.PRAUC.Corrected, report.Completed, report.Requested, time.Since(start).Round(time.Millisecond))

	final := s.factory()
	if err := final.Fit(ctx, dataset); err != nil {
		return nil, apperrors.Wrap(err, "fit final model")
	}
	baseline, err := s.baselines.Build(dataset)
	if err != nil {
		return nil, err
	}

	record, err := reportRecord(req.ModelName, report)
	if err != nil {
		return nil, err
	}
	if err := s.reports.SaveReport(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("report %s persisted for model %q", report.RunID, req.ModelName)

	return &TrainingResult{
		Report:   report,
		Model:    final,
		Baseline: baseline,
		Features: dataset.Features,
	}, nil
}

func reportRecord(modelName string, report *validation.Report) (ports.ReportRecord, error) {
	detail, err := json.Marshal(report.Iterations)
	if err != nil {
		return ports.ReportRecord{}, apperrors.Wrap(err, "encode iteration detail")
	}
	return ports.ReportRecord{
		RunID:           report.RunID.String(),
		ModelName:       modelName,
		Iterations:      report.Requested,
		Degenerate:      report.Degenerate,
		Seed:            report.Seed,
		OptimismMode:    string(report.Mode),
		ApparentROCAUC:  report.ROCAUC.Apparent,
		OptimismROCAUC:  report.ROCAUC.Optimism,
		CorrectedROCAUC: report.ROCAUC.Corrected,
		ApparentPRAUC:   report.PRAUC.Apparent,
		OptimismPRAUC:   report.PRAUC.Optimism,
		CorrectedPRAUC:  report.PRAUC.Corrected,
		IterationDetail: detail,
		CreatedAt:       report.CreatedAt.Time(),
	}, nil
}
