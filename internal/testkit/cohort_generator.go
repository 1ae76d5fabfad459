package testkit

import (
	"math"
	"math/rand"

	"plaquerisk/domain/cohort"
)

// ClinicalFeatures is the synthetic cohort's feature schema, mirroring the
// clinical study variables the service scores in production.
var ClinicalFeatures = []string{
	"sex",
	"age",
	"angina_class",
	"diabetes_mellitus",
	"hypertension",
	"cholesterol_mmol_l",
	"bmi",
	"lvef_percent",
	"syntax_score",
	"ffr",
}

// CohortGenerator produces deterministic synthetic patient cohorts with a
// known logistic ground truth, so classifier adapters can be exercised
// against data where real signal exists.
type CohortGenerator struct {
	rng *rand.Rand
}

// NewCohortGenerator creates a generator with its own seeded stream.
func NewCohortGenerator(seed int64) *CohortGenerator {
	return &CohortGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate builds n labeled patients. Labels follow a logistic model over
// age, SYNTAX score, FFR, and comorbidities, thresholded at 0.5 so the
// ground truth stays reproducible.
func (g *CohortGenerator) Generate(n int) cohort.Dataset {
	ds := cohort.Dataset{Features: ClinicalFeatures}
	anginaClasses := []string{"I", "II", "III", "IV"}

	for i := 0; i < n; i++ {
		age := 45 + g.rng.Float64()*40
		syntax := g.rng.Float64() * 45
		ffr := 0.5 + g.rng.Float64()*0.5
		lvef := 30 + g.rng.Float64()*40
		cholesterol := 3.0 + g.rng.Float64()*5
		bmi := 19 + g.rng.Float64()*18
		diabetes := g.rng.Float64() < 0.3
		hypertension := g.rng.Float64() < 0.6
		male := g.rng.Float64() < 0.55
		angina := anginaClasses[g.rng.Intn(len(anginaClasses))]

		profile := cohort.Profile{
			"sex":                cohort.Cat(map[bool]string{true: "male", false: "female"}[male]),
			"age":                cohort.Num(math.Round(age)),
			"angina_class":       cohort.Cat(angina),
			"diabetes_mellitus":  cohort.Bool(diabetes),
			"hypertension":       cohort.Bool(hypertension),
			"cholesterol_mmol_l": cohort.Num(math.Round(cholesterol*10) / 10),
			"bmi":                cohort.Num(math.Round(bmi*10) / 10),
			"lvef_percent":       cohort.Num(math.Round(lvef)),
			"syntax_score":       cohort.Num(math.Round(syntax)),
			"ffr":                cohort.Num(math.Round(ffr*100) / 100),
		}

		z := -4.0 +
			0.04*(age-60) +
			0.06*syntax +
			4.0*(0.85-ffr) +
			0.03*(55-lvef) +
			0.25*(cholesterol-5)
		if diabetes {
			z += 0.8
		}
		if hypertension {
			z += 0.4
		}
		if male {
			z += 0.2
		}
		if angina == "III" || angina == "IV" {
			z += 0.5
		}
		// Latent noise keeps classes overlapping but learnable.
		z += g.rng.NormFloat64() * 0.8

		label := 0
		if 1.0/(1.0+math.Exp(-z)) >= 0.5 {
			label = 1
		}
		ds.Rows = append(ds.Rows, profile)
		ds.Labels = append(ds.Labels, label)
	}
	return ds
}
