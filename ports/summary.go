package ports

import "context"

// EffectRow is a serialized single-feature effect handed to the narrative
// generator: values are already rendered for display.
type EffectRow struct {
	Feature        string  `json:"feature"`
	Effect         float64 `json:"effect"`
	PatientValue   string  `json:"patient_value"`
	ReferenceValue string  `json:"reference_value"`
}

// SummaryRequest carries everything the narrative generator may reference.
type SummaryRequest struct {
	PatientFeatures     []EffectFeature `json:"patient_features"`
	Probability         float64         `json:"probability"`
	RiskTier            string          `json:"risk_tier"`
	BaselineProbability float64         `json:"baseline_probability"`
	RiskDrivers         []EffectRow     `json:"risk_drivers"`       // top risk-increasing effects
	ProtectiveSignals   []EffectRow     `json:"protective_signals"` // top risk-reducing effects
}

// EffectFeature is one rendered patient feature for prompt construction.
type EffectFeature struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
}

// ExecutiveSummary is the narrative payload surfaced alongside a prediction.
type ExecutiveSummary struct {
	Headline          string   `json:"headline"`
	ClinicalSummary   string   `json:"clinical_summary"`
	RiskDrivers       []string `json:"risk_drivers"`
	ProtectiveSignals []string `json:"protective_signals"`
	CareFocus         []string `json:"care_focus"`
	Source            string   `json:"source"` // "gemini" or "fallback"
}

// SummaryGenerator produces an executive summary for one prediction. The
// implementation decides between an LLM call and a template fallback; it
// must not fail a prediction on narrative trouble.
type SummaryGenerator interface {
	Generate(ctx context.Context, req SummaryRequest) (*ExecutiveSummary, error)
}
