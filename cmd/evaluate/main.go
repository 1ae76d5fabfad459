// Command evaluate prints the persisted leaderboard and the latest
// validation report without retraining anything.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"plaquerisk/adapters/postgres"
	"plaquerisk/internal/config"
	apperrors "plaquerisk/internal/errors"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required to evaluate persisted reports")
	}

	limit := flag.Int("limit", 20, "leaderboard entries to show")
	flag.Parse()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	reports := postgres.NewReportRepository(db)

	latest, err := reports.LatestReport(ctx)
	switch {
	case err == nil:
		fmt.Printf("latest run %s (%s, %s mode)\n", latest.RunID, latest.ModelName, latest.OptimismMode)
		fmt.Printf("  ROC-AUC corrected %.4f (apparent %.4f, optimism %.4f)\n",
			latest.CorrectedROCAUC, latest.ApparentROCAUC, latest.OptimismROCAUC)
		fmt.Printf("  PR-AUC  corrected %.4f (apparent %.4f, optimism %.4f)\n",
			latest.CorrectedPRAUC, latest.ApparentPRAUC, latest.OptimismPRAUC)
	case apperrors.GetCode(err) == apperrors.CodeNotFound:
		fmt.Println("no validation reports recorded yet")
		return
	default:
		log.Fatalf("Failed to load latest report: %v", err)
	}

	entries, err := reports.Leaderboard(ctx, *limit)
	if err != nil {
		log.Fatalf("Failed to load leaderboard: %v", err)
	}
	fmt.Println("\nleaderboard (by corrected ROC-AUC):")
	for i, e := range entries {
		fmt.Printf("%2d. %-24s roc %.4f  pr %.4f  iters %d  %s\n",
			i+1, e.ModelName, e.CorrectedROCAUC, e.CorrectedPRAUC, e.Iterations,
			e.CreatedAt.Format("2006-01-02 15:04"))
	}
}
