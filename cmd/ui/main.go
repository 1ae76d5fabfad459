// Command ui serves the operator dashboard: latest validation report,
// leaderboard, and the rendered model card.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"plaquerisk/adapters/postgres"
	"plaquerisk/internal"
	"plaquerisk/internal/config"
	"plaquerisk/internal/testkit"
	"plaquerisk/ports"
	"plaquerisk/ui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	addr := flag.String("addr", ":8090", "dashboard listen address")
	flag.Parse()

	logger := internal.NewDefaultLogger()

	var reports ports.ReportRepository
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, the dashboard will show an empty in-memory store")
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

	dashboard, err := ui.NewDashboard(reports, logger)
	if err != nil {
		log.Fatalf("Failed to build dashboard: %v", err)
	}
	log.Fatal(dashboard.Start(*addr))
}
