package validation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"plaquerisk/domain/cohort"
	"plaquerisk/domain/core"
	"plaquerisk/domain/metrics"
	"plaquerisk/ports"
)

// Config controls one validation run. Zero values fall back to defaults, so
// callers only set what they need.
type Config struct {
	Iterations    int          // bootstrap resamples, default 300
	Seed          int64        // base seed; iteration i draws from seed XOR i
	Mode          OptimismMode // default ModeFullData
	Workers       int          // parallel iterations, default GOMAXPROCS
	ProgressEvery int          // coarse progress interval, default 25
	Progress      func(completed, total int)
}

func (c Config) withDefaults() Config {
	if c.Iterations <= 0 {
		c.Iterations = 300
	}
	if c.Mode == "" {
		c.Mode = ModeFullData
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = 25
	}
	return c
}

// Engine orchestrates repeated resample/train/evaluate cycles against the
// classifier collaborator and aggregates them into an optimism-corrected
// report. Iterations are independent, so they run on a bounded worker pool;
// each draws from a sub-stream derived from the base seed and its own index,
// which keeps parallel runs reproducible and order-independent.
type Engine struct {
	computer *metrics.Computer
	rng      ports.RNGPort
}

// NewEngine creates a bootstrap validation engine.
func NewEngine(computer *metrics.Computer, rng ports.RNGPort) *Engine {
	return &Engine{computer: computer, rng: rng}
}

// Run executes the configured number of bootstrap iterations and returns the
// report. Degenerate folds (empty out-of-bag set or single-class labels) are
// recorded and excluded from aggregation; classifier failures abort the run.
func (e *Engine) Run(ctx context.Context, ds cohort.Dataset, factory ports.ClassifierFactory, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.Len() < 3 {
		return nil, fmt.Errorf("%w: %d rows cannot be bootstrapped", core.ErrInsufficientData, ds.Len())
	}
	if ds.SingleClass() {
		return nil, fmt.Errorf("%w: dataset labels are single-class", core.ErrInsufficientData)
	}

	records := make([]IterationRecord, cfg.Iterations)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Iterations; i++ {
		g.Go(func() error {
			rec, err := e.runIteration(gctx, ds, factory, i, cfg.Seed)
			if err != nil {
				return err
			}
			records[i] = rec

			done := int(completed.Add(1))
			if cfg.Progress != nil && done%cfg.ProgressEvery == 0 {
				cfg.Progress(done, cfg.Iterations)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.aggregate(ctx, ds, factory, cfg, records)
}

// runIteration draws one in-bag multiset, fits a fresh classifier on it, and
// evaluates both the in-bag rows and the out-of-bag complement.
func (e *Engine) runIteration(ctx context.Context, ds cohort.Dataset, factory ports.ClassifierFactory, index int, seed int64) (IterationRecord, error) {
	stream := e.rng.SeededStream(fmt.Sprintf("bootstrap-%d", index), seed^int64(index))
	inBag, oob := drawIndices(stream, ds.Len())

	rec := IterationRecord{Index: index, InBagIndices: inBag, OOBIndices: oob}

	if len(oob) == 0 {
		rec.Degenerate = true
		rec.SkipReason = "empty out-of-bag set"
		return rec, nil
	}
	inBagSet := ds.Subset(inBag)
	oobSet := ds.Subset(oob)
	if inBagSet.SingleClass() {
		rec.Degenerate = true
		rec.SkipReason = "single-class in-bag labels"
		return rec, nil
	}
	if oobSet.SingleClass() {
		rec.Degenerate = true
		rec.SkipReason = "single-class out-of-bag labels"
		return rec, nil
	}

	clf := factory()
	if err := clf.Fit(ctx, inBagSet); err != nil {
		return rec, fmt.Errorf("bootstrap iteration %d: fit: %w", index, err)
	}

	inBagScores, err := clf.PredictProba(ctx, inBagSet.Rows)
	if err != nil {
		return rec, fmt.Errorf("bootstrap iteration %d: score in-bag: %w", index, err)
	}
	oobScores, err := clf.PredictProba(ctx, oobSet.Rows)
	if err != nil {
		return rec, fmt.Errorf("bootstrap iteration %d: score out-of-bag: %w", index, err)
	}

	rec.InBag, err = e.computer.Compute(inBagSet.Labels, inBagScores)
	if err != nil {
		if core.IsDegenerateFold(err) {
			rec.Degenerate = true
			rec.SkipReason = "degenerate in-bag metrics"
			return rec, nil
		}
		return rec, err
	}
	rec.OOB, err = e.computer.Compute(oobSet.Labels, oobScores)
	if err != nil {
		if core.IsDegenerateFold(err) {
			rec.Degenerate = true
			rec.SkipReason = "degenerate out-of-bag metrics"
			return rec, nil
		}
		return rec, err
	}
	return rec, nil
}

// aggregate computes per-metric optimism over the non-degenerate iterations,
// fits a final classifier on the full dataset for the apparent estimate, and
// derives the corrected estimate per the configured mode.
func (e *Engine) aggregate(ctx context.Context, ds cohort.Dataset, factory ports.ClassifierFactory, cfg Config, records []IterationRecord) (*Report, error) {
	var rocGaps, prGaps, rocOOB, prOOB []float64
	degenerate := 0
	for _, rec := range records {
		if rec.Degenerate {
			degenerate++
			continue
		}
		rocGaps = append(rocGaps, rec.InBag.ROCAUC-rec.OOB.ROCAUC)
		prGaps = append(prGaps, rec.InBag.PRAUC-rec.OOB.PRAUC)
		rocOOB = append(rocOOB, rec.OOB.ROCAUC)
		prOOB = append(prOOB, rec.OOB.PRAUC)
	}
	if len(rocGaps) == 0 {
		return nil, fmt.Errorf("%w: all %d iterations degenerate", core.ErrInsufficientData, len(records))
	}

	clf := factory()
	if err := clf.Fit(ctx, ds); err != nil {
		return nil, fmt.Errorf("apparent fit: %w", err)
	}
	scores, err := clf.PredictProba(ctx, ds.Rows)
	if err != nil {
		return nil, fmt.Errorf("apparent scoring: %w", err)
	}
	apparent, err := e.computer.Compute(ds.Labels, scores)
	if err != nil {
		return nil, fmt.Errorf("apparent metrics: %w", err)
	}

	report := &Report{
		RunID:      core.RunID(core.NewID()),
		Requested:  len(records),
		Completed:  len(rocGaps),
		Degenerate: degenerate,
		Seed:       cfg.Seed,
		Mode:       cfg.Mode,
		Iterations: records,
		ROCAUC:     estimate(cfg.Mode, apparent.ROCAUC, stat.Mean(rocGaps, nil), stat.Mean(rocOOB, nil)),
		PRAUC:      estimate(cfg.Mode, apparent.PRAUC, stat.Mean(prGaps, nil), stat.Mean(prOOB, nil)),
		CreatedAt:  core.Now(),
	}
	return report, nil
}

func estimate(mode OptimismMode, apparent, optimism, meanOOB float64) Estimate {
	est := Estimate{Apparent: apparent, Optimism: optimism}
	switch mode {
	case ModePerFold:
		est.Corrected = meanOOB
	default:
		est.Corrected = apparent - optimism
	}
	return est
}

// drawIndices samples n indices uniformly with replacement and returns the
// multiset alongside the ascending out-of-bag complement.
func drawIndices(stream *rand.Rand, n int) (inBag, oob []int) {
	inBag = make([]int, n)
	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		idx := stream.Intn(n)
		inBag[i] = idx
		seen[idx] = true
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			oob = append(oob, i)
		}
	}
	return inBag, oob
}
