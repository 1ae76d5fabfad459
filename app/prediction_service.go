package app

import (
	"context"
	"encoding/json"
	"sort"

	"plaquerisk/domain/cohort"
	"plaquerisk/domain/core"
	"plaquerisk/domain/explain"
	"plaquerisk/domain/risk"
	"plaquerisk/internal"
	"plaquerisk/ports"
)

// summaryEffectLimit caps how many effects per direction feed the narrative.
const summaryEffectLimit = 3

// Prediction is the full response for one patient: probability, tier, the
// counterfactual decomposition, and the narrative summary.
type Prediction struct {
	Probability float64
	Tier        risk.Tier
	Explanation *explain.Result
	Summary     *ports.ExecutiveSummary
}

// PredictionService scores one patient against the trained model, decomposes
// the score into per-feature effects, and attaches a narrative summary.
type PredictionService struct {
	model     ports.Classifier
	features  []string
	baseline  cohort.Profile
	tiers     *risk.TierMapper
	explainer *explain.Explainer
	summaries ports.SummaryGenerator
	audit     ports.PredictionLogRepository
	modelName string
	topK      int
	logger    *internal.Logger
}

func NewPredictionService(
	model ports.Classifier,
	features []string,
	baseline cohort.Profile,
	tiers *risk.TierMapper,
	summaries ports.SummaryGenerator,
	audit ports.PredictionLogRepository,
	modelName string,
	topK int,
	logger *internal.Logger,
) *PredictionService {
	return &PredictionService{
		model:     model,
		features:  features,
		baseline:  baseline,
		tiers:     tiers,
		explainer: explain.NewExplainer(),
		summaries: summaries,
		audit:     audit,
		modelName: modelName,
		topK:      topK,
		logger:    logger.WithComponent("prediction"),
	}
}

// Predict scores a patient. The profile must carry every schema feature;
// narrative and audit failures degrade gracefully, scoring failures do not.
func (s *PredictionService) Predict(ctx context.Context, patient cohort.Profile) (*Prediction, error) {
	if missing := patient.MissingFeatures(s.features); len(missing) > 0 {
		return nil, core.MissingFeature(missing...)
	}

	result, err := s.explainer.Explain(ctx, s.model, s.features, s.baseline, patient)
	if err != nil {
		return nil, err
	}
	probability := result.TargetProbability
	tier := s.tiers.Tier(probability)

	if s.topK > 0 {
		result.Effects = result.Top(s.topK)
	}

	summary := s.buildSummary(ctx, patient, probability, tier, result)

	s.logPrediction(ctx, patient, probability, tier, result)

	return &Prediction{
		Probability: probability,
		Tier:        tier,
		Explanation: result,
		Summary:     summary,
	}, nil
}

func (s *PredictionService) buildSummary(ctx context.Context, patient cohort.Profile, probability float64, tier risk.Tier, result *explain.Result) *ports.ExecutiveSummary {
	req := ports.SummaryRequest{
		Probability:         probability,
		RiskTier:            string(tier),
		BaselineProbability: result.BaselineProbability,
		RiskDrivers:         effectRows(result.Effects, true),
		ProtectiveSignals:   effectRows(result.Effects, false),
	}
	names := make([]string, 0, len(patient))
	for name := range patient {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.PatientFeatures = append(req.PatientFeatures, ports.EffectFeature{
			Feature: name,
			Value:   patient[name].Display(),
		})
	}

	summary, err := s.summaries.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("summary generation failed: %v", err)
		return nil
	}
	return summary
}

// effectRows picks the strongest effects in one direction. Effects arrive
// already sorted by descending magnitude, so order is preserved.
func effectRows(effects []explain.FeatureEffect, risingRisk bool) []ports.EffectRow {
	var rows []ports.EffectRow
	for _, eff := range effects {
		if risingRisk && eff.Direction != explain.DirectionIncrease {
			continue
		}
		if !risingRisk && eff.Direction != explain.DirectionDecrease {
			continue
		}
		rows = append(rows, ports.EffectRow{
			Feature:        eff.Feature,
			Effect:         eff.Effect,
			PatientValue:   eff.PatientValue.Display(),
			ReferenceValue: eff.BaselineValue.Display(),
		})
		if len(rows) == summaryEffectLimit {
			break
		}
	}
	return rows
}

// logPrediction records the served prediction for audit. Failures are logged
// and swallowed so auditing never blocks a clinical response.
func (s *PredictionService) logPrediction(ctx context.Context, patient cohort.Profile, probability float64, tier risk.Tier, result *explain.Result) {
	if s.audit == nil {
		return
	}
	featuresJSON, err := json.Marshal(patient)
	if err != nil {
		s.logger.Warn("encode prediction features: %v", err)
		return
	}
	effectsJSON, err := json.Marshal(result.Effects)
	if err != nil {
		s.logger.Warn("encode prediction effects: %v", err)
		return
	}
	record := ports.PredictionRecord{
		ID:          core.NewID().String(),
		ModelName:   s.modelName,
		Probability: probability,
		RiskTier:    string(tier),
		Features:    featuresJSON,
		Effects:     effectsJSON,
		CreatedAt:   core.Now().Time(),
	}
	if err := s.audit.LogPrediction(ctx, record); err != nil {
		s.logger.Warn("prediction audit log failed: %v", err)
	}
}
