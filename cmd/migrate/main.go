package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
	"github.com/crickwise/dream11-optimizer/internal/models"
	"github.com/crickwise/dream11-optimizer/internal/providers"
	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/config"
	"github.com/crickwise/dream11-optimizer/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db, cfg); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.Team{},
		&models.Venue{},
		&models.Player{},
		&models.Prediction{},
		&models.PredictionPlayer{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_players_team_role ON players(team_id, role)",
		"CREATE INDEX IF NOT EXISTS idx_players_cost ON players(cost)",
		"CREATE INDEX IF NOT EXISTS idx_prediction_players_strategy ON prediction_players(prediction_id, strategy)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Reverse dependency order for the foreign keys
	tables := []string{
		"prediction_players",
		"predictions",
		"players",
		"venues",
		"teams",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

// seedData loads the bundled IPL dataset through the same refresh path the
// scheduler uses, so a seeded database matches a fetched one exactly.
func seedData(db *database.DB, cfg *config.Config) error {
	logger := logrus.StandardLogger()
	provider := providers.NewCSVProvider(cfg.DataFolder, logger)

	fetcher := services.NewDataFetcherService(
		db, nil, provider,
		cricket.DefaultClassifierConfig(), logger, time.Hour,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return fetcher.RefreshPlayers(ctx)
}
