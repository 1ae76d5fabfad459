// Command train runs the full pipeline once: read the cohort, bootstrap
// validate, fit the final model, persist the report, and print the headline
// estimates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"plaquerisk/adapters/classifier"
	"plaquerisk/adapters/cohortfile"
	"plaquerisk/adapters/postgres"
	"plaquerisk/adapters/rng"
	"plaquerisk/app"
	"plaquerisk/domain/metrics"
	"plaquerisk/domain/validation"
	"plaquerisk/internal"
	"plaquerisk/internal/config"
	"plaquerisk/internal/testkit"
	"plaquerisk/ports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cohortPath := flag.String("cohort", cfg.Paths.CohortFile, "path to the cohort CSV/XLSX file")
	modelName := flag.String("model", cfg.Paths.ModelName, "model name for the leaderboard")
	iterations := flag.Int("iterations", cfg.Validation.Iterations, "bootstrap iterations")
	seed := flag.Int64("seed", cfg.Validation.Seed, "base RNG seed")
	mode := flag.String("mode", cfg.Validation.OptimismMode, "optimism mode: full or perfold")
	flag.Parse()

	logger := internal.NewDefaultLogger()

	var reports ports.ReportRepository
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, the report will not be persisted beyond this run")
		reports = testkit.NewInMemoryStore()
	} else {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		reports = postgres.NewReportRepository(db)
	}

	engine := validation.NewEngine(metrics.NewComputer(), rng.NewStreamRNG())
	training := app.NewTrainingService(
		cohortfile.NewDataReader(cfg.Paths.LabelColumn),
		engine,
		classifier.Factory(classifier.Config{}),
		reports,
		logger,
	)

	result, err := training.Run(context.Background(), app.TrainingRequest{
		CohortPath: *cohortPath,
		ModelName:  *modelName,
		Iterations: *iterations,
		Seed:       *seed,
		Mode:       validation.OptimismMode(*mode),
		Workers:    cfg.Validation.Workers,
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	report := result.Report
	fmt.Printf("run %s (%s mode, seed %d)\n", report.RunID, report.Mode, report.Seed)
	fmt.Printf("iterations: %d requested, %d completed, %d degenerate\n",
		report.Requested, report.Completed, report.Degenerate)
	fmt.Printf("ROC-AUC  apparent %.4f  optimism %.4f  corrected %.4f\n",
		report.ROCAUC.Apparent, report.ROCAUC.Optimism, report.ROCAUC.Corrected)
	fmt.Printf("PR-AUC   apparent %.4f  optimism %.4f  corrected %.4f\n",
		report.PRAUC.Apparent, report.PRAUC.Optimism, report.PRAUC.Corrected)
}
