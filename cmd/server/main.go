// Package main is the entry point for the folio portfolio tracker
// daemon. It wires configuration, logging, the SQLite store, the domain
// services and the snapshot scheduler, then waits for a shutdown signal.
//
// Presentation layers (HTTP API, CLI) live outside this repository and
// talk to the same store through the domain interfaces.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/avoran/folio/internal/config"
	"github.com/avoran/folio/internal/database"
	"github.com/avoran/folio/internal/domain"
	"github.com/avoran/folio/internal/events"
	"github.com/avoran/folio/internal/modules/portfolio"
	"github.com/avoran/folio/internal/scheduler"
	"github.com/avoran/folio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting folio")

	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileLedger,
		Name:    "folio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	uowFactory := database.NewManager(db, log)
	source := events.NewSource()
	calc := portfolio.NewCalculationService(log)

	sched := scheduler.New(log)
	prices := &filePriceSource{path: filepath.Join(cfg.DataDir, "prices.json")}
	job := scheduler.NewSnapshotJob(uowFactory, calc, prices, source, log)
	if err := sched.AddJob(cfg.SnapshotSchedule, job); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot job")
	}

	maintenance := scheduler.NewMaintenanceJob(db, log)
	if err := sched.AddJob(cfg.MaintenanceSchedule, maintenance); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	// Refuse to start on a corrupted ledger.
	if err := sched.RunNow(maintenance); err != nil {
		log.Fatal().Err(err).Msg("Database failed its startup check")
	}

	sched.Start()
	defer sched.Stop()

	log.Info().Msg("folio started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
}

// filePriceSource reads current prices from a JSON file maintained by an
// external tool: {"AAPL": {"amount": "187.50", "currency": "USD"}, ...}.
// This keeps market data strictly outside the core.
type filePriceSource struct {
	path string
}

func (f *filePriceSource) Prices(symbols []string) (map[string]domain.Money, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price file %s: %w", f.path, err)
	}

	var all map[string]domain.Money
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse price file %s: %w", f.path, err)
	}

	prices := make(map[string]domain.Money, len(symbols))
	for _, symbol := range symbols {
		if price, ok := all[symbol]; ok {
			prices[symbol] = price
		}
	}
	return prices, nil
}
