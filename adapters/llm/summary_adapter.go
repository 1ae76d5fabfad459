// Package llm generates patient-facing executive summaries: a Gemini call
// when configured, a deterministic template fallback otherwise or on any
// failure. Narrative trouble never fails a prediction.
package llm

import (
	"context"
	"fmt"
	"strings"

	"plaquerisk/adapters/llm/heuristic"
	"plaquerisk/internal"
	"plaquerisk/ports"
)

const (
	sourceGemini   = "gemini"
	sourceFallback = "fallback"
)

// SummaryAdapter implements ports.SummaryGenerator.
type SummaryAdapter struct {
	client   JSONClient
	fallback *heuristic.Generator
	logger   *internal.Logger
}

// NewSummaryAdapter wires the Gemini client when an API key is configured.
// Without one, every summary comes from the template fallback.
func NewSummaryAdapter(config Config, logger *internal.Logger) *SummaryAdapter {
	adapter := &SummaryAdapter{
		fallback: heuristic.NewGenerator(),
		logger:   logger.WithComponent("summary"),
	}
	client, err := newJSONClient(config)
	if err != nil {
		adapter.logger.Info("narrative LLM disabled: %v", err)
		return adapter
	}
	adapter.client = client
	return adapter
}

// NewSummaryAdapterWithClient injects a client directly; used by tests.
func NewSummaryAdapterWithClient(client JSONClient, logger *internal.Logger) *SummaryAdapter {
	return &SummaryAdapter{
		client:   client,
		fallback: heuristic.NewGenerator(),
		logger:   logger.WithComponent("summary"),
	}
}

// Generate produces the executive summary. The fallback summary is always
// computed first so LLM output can be normalized against it field by field.
func (a *SummaryAdapter) Generate(ctx context.Context, req ports.SummaryRequest) (*ports.ExecutiveSummary, error) {
	fallback := a.fallback.Build(req)
	fallback.Source = sourceFallback

	if a.client == nil {
		return &fallback, nil
	}

	raw, err := a.client.GenerateJSON(ctx, buildPrompt(req))
	if err != nil {
		a.logger.Warn("summary generation failed, using fallback: %v", err)
		return &fallback, nil
	}

	summary := normalizeSummary(raw, fallback)
	summary.Source = sourceGemini
	return &summary, nil
}

// normalizeSummary merges untrusted LLM JSON with the fallback: blank or
// malformed fields keep their fallback value, lists are padded to three.
func normalizeSummary(raw map[string]interface{}, fallback ports.ExecutiveSummary) ports.ExecutiveSummary {
	out := fallback

	if headline := stringField(raw, "headline"); headline != "" {
		out.Headline = headline
	}
	if clinical := stringField(raw, "clinical_summary"); clinical != "" {
		out.ClinicalSummary = clinical
	}
	out.RiskDrivers = heuristic.NormalizeList(stringList(raw, "risk_drivers"), fallback.RiskDrivers)
	out.ProtectiveSignals = heuristic.NormalizeList(stringList(raw, "protective_signals"), fallback.ProtectiveSignals)
	out.CareFocus = heuristic.NormalizeList(stringList(raw, "care_focus"), fallback.CareFocus)
	return out
}

func stringField(raw map[string]interface{}, key string) string {
	if s, ok := raw[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringList(raw map[string]interface{}, key string) []string {
	items, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func buildPrompt(req ports.SummaryRequest) string {
	var b strings.Builder

	b.WriteString("You are a cardiology decision-support assistant.\n")
	b.WriteString("Generate a patient-specific executive summary from this model output.\n\n")
	b.WriteString("Return JSON only with exactly these keys:\n")
	b.WriteString("headline (string), clinical_summary (string), risk_drivers (array of 3 strings),\n")
	b.WriteString("protective_signals (array of 3 strings), care_focus (array of 3 strings).\n\n")
	b.WriteString("Constraints:\n")
	b.WriteString("- Keep statements concise, clinically professional, and patient-communicable.\n")
	b.WriteString("- Use only the data provided below.\n")
	b.WriteString("- Do not mention being an AI model.\n")
	b.WriteString("- Do not add markdown.\n\n")

	b.WriteString("Patient profile:\n")
	for _, f := range req.PatientFeatures {
		fmt.Fprintf(&b, "- %s: %s\n", heuristic.HumanizeFeature(f.Feature), f.Value)
	}

	fmt.Fprintf(&b, "\nPredicted adverse outcome probability: %.1f%%\n", req.Probability*100)
	fmt.Fprintf(&b, "Risk tier: %s\n", req.RiskTier)
	fmt.Fprintf(&b, "Cohort baseline probability: %.1f%%\n\n", req.BaselineProbability*100)

	b.WriteString("Top risk-increasing effects:\n")
	writeEffectLines(&b, req.RiskDrivers, "- No dominant risk-increasing features detected.")
	b.WriteString("\nTop risk-reducing effects:\n")
	writeEffectLines(&b, req.ProtectiveSignals, "- No dominant protective features detected.")

	return b.String()
}

func writeEffectLines(b *strings.Builder, rows []ports.EffectRow, empty string) {
	if len(rows) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, row := range rows {
		fmt.Fprintf(b, "- %s: %s (patient %s, baseline %s)\n",
			heuristic.HumanizeFeature(row.Feature), heuristic.FormatEffect(row.Effect),
			row.PatientValue, row.ReferenceValue)
	}
}

var _ ports.SummaryGenerator = (*SummaryAdapter)(nil)
