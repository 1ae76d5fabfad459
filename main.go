package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"plaquerisk/adapters/classifier"
	"plaquerisk/adapters/cohortfile"
	"plaquerisk/adapters/llm"
	"plaquerisk/adapters/postgres"
	"plaquerisk/adapters/rng"
	"plaquerisk/app"
	"plaquerisk/domain/metrics"
	"plaquerisk/domain/risk"
	"plaquerisk/domain/validation"
	"plaquerisk/internal"
	"plaquerisk/internal/config"
	"plaquerisk/internal/testkit"
	"plaquerisk/ports"
	"plaquerisk/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)
	logger := internal.NewDefaultLogger()

	reports, predictionLog, db := buildRepositories(cfg, logger)
	if db != nil {
		defer db.Close()
	}

	engine := validation.NewEngine(metrics.NewComputer(), rng.NewStreamRNG())
	factory := classifier.Factory(classifier.Config{})
	reader := cohortfile.NewDataReader(cfg.Paths.LabelColumn)

	training := app.NewTrainingService(reader, engine, factory, reports, logger)

	result, err := training.Run(context.Background(), app.TrainingRequest{
		CohortPath: cfg.Paths.CohortFile,
		ModelName:  cfg.Paths.ModelName,
		Iterations: cfg.Validation.Iterations,
		Seed:       cfg.Validation.Seed,
		Mode:       validation.OptimismMode(cfg.Validation.OptimismMode),
		Workers:    cfg.Validation.Workers,
	})
	if err != nil {
		log.Fatalf("Startup training failed: %v", err)
	}

	tiers, err := risk.NewTierMapper(cfg.Risk.LowThreshold, cfg.Risk.HighThreshold)
	if err != nil {
		log.Fatalf("Invalid risk thresholds: %v", err)
	}

	summaries := llm.NewSummaryAdapter(llm.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		BaseURL:     cfg.Gemini.BaseURL,
		Temperature: cfg.Gemini.Temperature,
		Timeout:     cfg.Gemini.Timeout,
	}, logger)

	predictions := app.NewPredictionService(
		result.Model,
		result.Features,
		result.Baseline,
		tiers,
		summaries,
		predictionLog,
		cfg.Paths.ModelName,
		cfg.Risk.TopK,
		logger,
	)

	server := ui.NewServer(predictions, training, reports, cfg.Paths.ModelName, cfg.Paths.CohortFile, logger)
	log.Fatal(server.Start(":" + cfg.Server.Port))
}

// buildRepositories connects Postgres when DATABASE_URL is set, otherwise
// falls back to the in-memory store so the prototype runs without a database.
func buildRepositories(cfg *config.Config, logger *internal.Logger) (ports.ReportRepository, ports.PredictionLogRepository, *sqlx.DB) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, reports and predictions are held in memory only")
		store := testkit.NewInMemoryStore()
		return store, store, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	return postgres.NewReportRepository(db), postgres.NewPredictionLogRepository(db), db
}
