// Package models holds the JSON request/response shapes of the HTTP API.
package models

import (
	"time"

	"plaquerisk/domain/cohort"
	"plaquerisk/domain/explain"
	"plaquerisk/ports"
)

// PredictionRequest is the patient payload for the adverse-outcome endpoint.
// Ranges mirror the clinical intake form; booleans are pointers so that an
// explicit false passes required validation.
type PredictionRequest struct {
	Sex                           string  `json:"sex" binding:"required,oneof=female male"`
	Age                           float64 `json:"age" binding:"required,gte=30,lte=95"`
	AnginaClass                   string  `json:"angina_class" binding:"required,oneof=I II III IV"`
	PostInfarctionCardiosclerosis *bool   `json:"post_infarction_cardiosclerosis" binding:"required"`
	MultifocalAtherosclerosis     *bool   `json:"multifocal_atherosclerosis" binding:"required"`
	DiabetesMellitus              *bool   `json:"diabetes_mellitus" binding:"required"`
	Hypertension                  *bool   `json:"hypertension" binding:"required"`
	CholesterolMmolL              float64 `json:"cholesterol_mmol_l" binding:"required,gte=2,lte=12"`
	BMI                           float64 `json:"bmi" binding:"required,gte=15,lte=60"`
	LVEFPercent                   float64 `json:"lvef_percent" binding:"required,gte=20,lte=80"`
	SyntaxScore                   float64 `json:"syntax_score" binding:"gte=0,lte=60"`
	FFR                           float64 `json:"ffr" binding:"required,gte=0.4,lte=1.0"`
}

// ToProfile converts the validated request into a patient profile keyed by
// the cohort schema feature names.
func (r PredictionRequest) ToProfile() cohort.Profile {
	return cohort.Profile{
		"sex":                             cohort.Cat(r.Sex),
		"age":                             cohort.Num(r.Age),
		"angina_class":                    cohort.Cat(r.AnginaClass),
		"post_infarction_cardiosclerosis": cohort.Bool(*r.PostInfarctionCardiosclerosis),
		"multifocal_atherosclerosis":      cohort.Bool(*r.MultifocalAtherosclerosis),
		"diabetes_mellitus":               cohort.Bool(*r.DiabetesMellitus),
		"hypertension":                    cohort.Bool(*r.Hypertension),
		"cholesterol_mmol_l":              cohort.Num(r.CholesterolMmolL),
		"bmi":                             cohort.Num(r.BMI),
		"lvef_percent":                    cohort.Num(r.LVEFPercent),
		"syntax_score":                    cohort.Num(r.SyntaxScore),
		"ffr":                             cohort.Num(r.FFR),
	}
}

// FeatureEffectDTO is one attributed effect with display-rendered values.
type FeatureEffectDTO struct {
	Feature       string  `json:"feature"`
	Effect        float64 `json:"effect"`
	Direction     string  `json:"direction"`
	PatientValue  string  `json:"patient_value"`
	BaselineValue string  `json:"baseline_value"`
}

// ExplanationDTO is the counterfactual decomposition of one prediction.
type ExplanationDTO struct {
	BaselineProbability float64            `json:"baseline_probability"`
	TargetProbability   float64            `json:"target_probability"`
	FeatureEffects      []FeatureEffectDTO `json:"feature_effects"`
	Residual            float64            `json:"residual"`
}

// PredictionResponse is the full scored response for one patient.
type PredictionResponse struct {
	ModelName        string                  `json:"model_name"`
	Probability      float64                 `json:"probability"`
	RiskTier         string                  `json:"risk_tier"`
	Explanation      ExplanationDTO          `json:"explanation"`
	ExecutiveSummary *ports.ExecutiveSummary `json:"executive_summary,omitempty"`
}

// NewExplanationDTO renders a decomposition for the wire.
func NewExplanationDTO(result *explain.Result) ExplanationDTO {
	dto := ExplanationDTO{
		BaselineProbability: result.BaselineProbability,
		TargetProbability:   result.TargetProbability,
		FeatureEffects:      make([]FeatureEffectDTO, 0, len(result.Effects)),
		Residual:            result.Residual,
	}
	for _, eff := range result.Effects {
		dto.FeatureEffects = append(dto.FeatureEffects, FeatureEffectDTO{
			Feature:       eff.Feature,
			Effect:        eff.Effect,
			Direction:     string(eff.Direction),
			PatientValue:  eff.PatientValue.Display(),
			BaselineValue: eff.BaselineValue.Display(),
		})
	}
	return dto
}

// ValidationRunRequest triggers a bootstrap validation run. Zero values keep
// the configured defaults.
type ValidationRunRequest struct {
	Iterations int    `json:"iterations" binding:"omitempty,gte=10,lte=2000"`
	Seed       *int64 `json:"seed"`
	Mode       string `json:"mode" binding:"omitempty,oneof=full perfold"`
}

// EstimateDTO is the optimism-corrected view of one metric.
type EstimateDTO struct {
	Apparent  float64 `json:"apparent"`
	Optimism  float64 `json:"optimism"`
	Corrected float64 `json:"corrected"`
}

// ValidationReportResponse is the headline view of a validation run.
type ValidationReportResponse struct {
	RunID      string      `json:"run_id"`
	ModelName  string      `json:"model_name"`
	Requested  int         `json:"requested_iterations"`
	Completed  int         `json:"completed_iterations"`
	Degenerate int         `json:"degenerate_folds"`
	Seed       int64       `json:"seed"`
	Mode       string      `json:"mode"`
	ROCAUC     EstimateDTO `json:"roc_auc"`
	PRAUC      EstimateDTO `json:"pr_auc"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	ModelName string `json:"model_name"`
}
