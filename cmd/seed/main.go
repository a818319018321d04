// Command seed inserts sample detection logs for local development.
//
// Flags:
//
//	--user         identity that owns the inserted logs (overrides SEED_USER_ID)
//	--copies       how many times to insert the sample set
//	--dry-run      build the logs without writing them
//	--seed-config  path to a YAML file with custom samples
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres/detectionlog"
	"github.com/heartmarshall/modlog-backend/internal/app"
	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/seeder"
)

func main() {
	userFlag := flag.String("user", "", "identity that owns the inserted logs")
	copiesFlag := flag.Int("copies", 0, "number of copies of the sample set")
	dryRunFlag := flag.Bool("dry-run", false, "build logs without writing to DB")
	seedConfigFlag := flag.String("seed-config", "", "path to seed YAML config file")
	flag.Parse()

	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)

	seedCfg, err := seeder.LoadConfig(*seedConfigFlag)
	if err != nil {
		logger.Error("load seed config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if *userFlag != "" {
		seedCfg.UserID = *userFlag
	}
	if *copiesFlag > 0 {
		seedCfg.Copies = *copiesFlag
	}
	if *dryRunFlag {
		seedCfg.DryRun = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pools, err := postgres.OpenPools(ctx, appCfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pools.Close()

	// Inserts need the elevated credential when one is configured; the
	// restricted role only reads.
	repo := detectionlog.NewRepo(pools.Primary())

	res, err := seeder.New(logger, repo, *seedCfg).Run(ctx)
	if err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed finished",
		slog.String("user_id", seedCfg.UserID),
		slog.Int("inserted", res.Inserted),
		slog.Bool("dry_run", seedCfg.DryRun),
	)
}
