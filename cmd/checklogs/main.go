// Command checklogs walks every detection log through the configured
// retrieval gateway and prints the total and the distinct owner identities.
// With the direct gateway, row-level security hides rows from unscoped
// reads, so the output shows what the restricted credential can see.
//
// Flags:
//
//	--page-size  logs per page (default: retrieval.page_size)
//	--min        minimum confidence (default 0)
//	--max        maximum confidence (default 1)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/app"
	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/service/retrieval"
)

type report struct {
	Gateway       string   `json:"gateway"`
	TotalLogs     int      `json:"totalLogs"`
	HarmfulLogs   int      `json:"harmfulLogs"`
	UnownedLogs   int      `json:"unownedLogs"`
	UniqueUserIDs []string `json:"uniqueUserIds"`
	Pages         int      `json:"pages"`
}

func main() {
	pageSizeFlag := flag.Int("page-size", 0, "logs per page")
	minFlag := flag.Float64("min", domain.MinConfidence, "minimum confidence")
	maxFlag := flag.Float64("max", domain.MaxConfidence, "maximum confidence")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pools, err := postgres.OpenPools(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pools.Close()

	gw, err := app.NewGateway(cfg.ResolvedGateway(), pools)
	if err != nil {
		logger.Error("select gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := retrieval.NewService(logger, gw, nil, cfg.Retrieval)
	sum, err := svc.ScanAll(ctx, domain.NewConfidenceRange(minFlag, maxFlag), *pageSizeFlag)
	if err != nil {
		logger.Error("scan logs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	out := report{
		Gateway:       svc.Kind(),
		TotalLogs:     sum.Total,
		HarmfulLogs:   sum.Harmful,
		UnownedLogs:   sum.Unowned,
		UniqueUserIDs: sum.UserIDs,
		Pages:         sum.Pages,
	}
	if out.UniqueUserIDs == nil {
		out.UniqueUserIDs = []string{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("write report", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
