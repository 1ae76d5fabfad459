// Package heuristic renders a deterministic executive summary from a
// prediction's decomposition. It is the fallback narrative path when no LLM
// is configured or the LLM call fails, so it must never error.
package heuristic

import (
	"fmt"
	"strings"

	"plaquerisk/ports"
)

// featureLabels maps schema feature names onto clinician-facing labels.
var featureLabels = map[string]string{
	"gender":                          "Gender",
	"sex":                             "Sex",
	"age":                             "Age",
	"angina_functional_class":         "Angina Class",
	"angina_class":                    "Angina Class",
	"post_infarction_cardiosclerosis": "Post-MI Cardiosclerosis",
	"multifocal_atherosclerosis":      "Multifocal Atherosclerosis",
	"diabetes_mellitus":               "Diabetes Mellitus",
	"hypertension":                    "Hypertension",
	"cholesterol_level":               "Cholesterol",
	"cholesterol_mmol_l":              "Cholesterol",
	"bmi":                             "BMI",
	"lvef_percent":                    "LVEF",
	"syntax_score":                    "SYNTAX Score",
	"ffr":                             "FFR",
	"other_factors":                   "Other Factors",
}

// Generator builds template-based executive summaries.
type Generator struct{}

// NewGenerator creates the fallback summary generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Build composes the full summary from the request. Always succeeds.
func (g *Generator) Build(req ports.SummaryRequest) ports.ExecutiveSummary {
	probabilityPct := req.Probability * 100
	baselinePct := req.BaselineProbability * 100

	delta := req.Probability - req.BaselineProbability
	relation := "near"
	if delta > 0.03 {
		relation = "above"
	} else if delta < -0.03 {
		relation = "below"
	}

	headline := fmt.Sprintf("%s estimated adverse-outcome risk (%.0f%%).",
		titleWord(req.RiskTier), probabilityPct)
	clinicalSummary := fmt.Sprintf(
		"The model estimates a %.1f%% probability of adverse cardiovascular outcomes, "+
			"which is %s the cohort baseline of %.1f%%. "+
			"Interpret this output with clinical judgment and follow-up context.",
		probabilityPct, relation, baselinePct)

	riskDrivers := driverLines(req.RiskDrivers, true)
	if len(riskDrivers) == 0 {
		riskDrivers = []string{"No single feature produced a dominant upward risk shift in this profile."}
	}
	riskDrivers = NormalizeList(riskDrivers, []string{
		"Risk appears distributed across multiple smaller feature effects.",
		"Review lower-ranked feature effects for additional contributing context.",
	})

	protective := driverLines(req.ProtectiveSignals, false)
	if len(protective) == 0 {
		protective = []string{"No strong protective feature effect was detected versus baseline."}
	}
	protective = NormalizeList(protective, []string{
		"Protective effects are limited and do not offset major risk drivers.",
		"Potential protective signals should be interpreted with the full clinical picture.",
	})

	careFocus := g.careFocus(req)
	careFocus = NormalizeList(careFocus, []string{
		"Continue risk-factor surveillance with coordinated outpatient follow-up.",
		"Align plan updates with symptom changes and interval testing.",
	})

	return ports.ExecutiveSummary{
		Headline:          headline,
		ClinicalSummary:   clinicalSummary,
		RiskDrivers:       riskDrivers,
		ProtectiveSignals: protective,
		CareFocus:         careFocus,
	}
}

// HumanizeFeature renders a schema feature name for clinicians.
func HumanizeFeature(feature string) string {
	if label, ok := featureLabels[feature]; ok {
		return label
	}
	words := strings.Split(strings.ReplaceAll(feature, "_", " "), " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// FormatEffect renders a signed probability effect as a percentage.
func FormatEffect(effect float64) string {
	sign := "+"
	if effect < 0 {
		sign = "-"
	}
	if effect < 0 {
		effect = -effect
	}
	return fmt.Sprintf("%s%.1f%%", sign, effect*100)
}

func driverLines(effects []ports.EffectRow, risingRisk bool) []string {
	trend := "raises"
	if !risingRisk {
		trend = "reduces"
	}
	var lines []string
	for _, row := range effects {
		lines = append(lines, fmt.Sprintf("%s (%s, baseline %s) %s risk by %s.",
			HumanizeFeature(row.Feature), row.PatientValue, row.ReferenceValue,
			trend, FormatEffect(row.Effect)))
	}
	return lines
}

func followUpLine(riskTier string) string {
	switch riskTier {
	case "high":
		return "Arrange close cardiology follow-up in 2-4 weeks with interval reassessment."
	case "moderate":
		return "Plan structured follow-up in 4-8 weeks and reassess risk trajectory."
	}
	return "Continue routine surveillance and reinforce symptom-triggered early review."
}

// careFocus derives up to three actions from the top risk drivers, padded
// with tier-generic guidance.
func (g *Generator) careFocus(req ports.SummaryRequest) []string {
	patientValue := make(map[string]string, len(req.PatientFeatures))
	for _, f := range req.PatientFeatures {
		patientValue[f.Feature] = f.Value
	}

	var items []string
	appendUnique := func(line string) bool {
		for _, existing := range items {
			if existing == line {
				return len(items) >= 3
			}
		}
		items = append(items, line)
		return len(items) >= 3
	}

	for _, row := range req.RiskDrivers {
		action := featureFocus(row.Feature, patientValue[row.Feature])
		if action != "" && appendUnique(action) {
			return items
		}
	}

	base := []string{
		followUpLine(req.RiskTier),
		"Optimize adherence to guideline-directed preventive therapy and lifestyle changes.",
		"Educate on warning symptoms requiring urgent clinical reassessment.",
	}
	for _, line := range base {
		if appendUnique(line) {
			break
		}
	}
	return items
}

func featureFocus(feature, value string) string {
	switch feature {
	case "cholesterol_level", "cholesterol_mmol_l":
		if value != "" {
			return fmt.Sprintf("Reassess lipid-lowering intensity and dietary adherence (cholesterol %s mmol/L).", value)
		}
		return "Reassess lipid-lowering intensity and dietary adherence."
	case "lvef_percent":
		if value != "" {
			return fmt.Sprintf("Review ventricular function strategy and optimize therapy (LVEF %s%%).", value)
		}
		return "Review ventricular function strategy and optimize therapy."
	case "syntax_score":
		return "Discuss coronary complexity findings in multidisciplinary review."
	case "ffr":
		return "Reevaluate ischemic burden and whether additional coronary assessment is needed."
	case "diabetes_mellitus":
		return "Intensify glycemic risk-factor control with coordinated cardiometabolic follow-up."
	case "hypertension":
		return "Tighten blood-pressure control with home BP trend review."
	case "multifocal_atherosclerosis":
		return "Address systemic atherosclerotic burden with comprehensive secondary prevention."
	case "post_infarction_cardiosclerosis":
		return "Review post-infarction remodeling management and adherence to cardioprotective therapy."
	case "age":
		return "Individualize follow-up cadence for age-associated event risk."
	case "angina_functional_class", "angina_class":
		return "Track symptom burden and consider escalation if functional class worsens."
	case "bmi":
		return "Set a weight-management plan to lower long-term cardiometabolic risk."
	}
	return ""
}

// NormalizeList dedupes and trims entries, padding with fallback lines up to
// exactly three items.
func NormalizeList(value []string, fallback []string) []string {
	const targetSize = 3
	var normalized []string
	seen := make(map[string]bool)
	for _, item := range value {
		cleaned := strings.TrimSpace(item)
		if cleaned != "" && !seen[cleaned] {
			seen[cleaned] = true
			normalized = append(normalized, cleaned)
		}
	}
	for _, item := range fallback {
		if len(normalized) >= targetSize {
			break
		}
		if !seen[item] {
			seen[item] = true
			normalized = append(normalized, item)
		}
	}
	if len(normalized) > targetSize {
		normalized = normalized[:targetSize]
	}
	return normalized
}
