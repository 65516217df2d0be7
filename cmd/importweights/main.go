// Command importweights ingests a legacy weights export into the database.
// Exports come in two shapes: the old dashboard saved a bare JSON array of
// weight records, the current API saves the {weights, processedGateIds}
// envelope. Both are accepted; original capture timestamps are preserved.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"harir-backend/internal/config"
	"harir-backend/internal/db"
	"harir-backend/internal/logging"
	"harir-backend/internal/reconciliation"
	"harir-backend/internal/repositories"
)

func main() {
	file := flag.String("file", "", "Path to the exported weights JSON file")
	dryRun := flag.Bool("dry-run", false, "Parse and report without writing to the database")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importweights -file <export.json> [-dry-run]")
		os.Exit(2)
	}

	if err := logging.Init(os.Getenv("APP_ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	data, err := os.ReadFile(*file)
	if err != nil {
		logging.Fatal("failed to read export file", "file", *file, "error", err.Error())
	}

	var payload reconciliation.WeightsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logging.Fatal("failed to parse export file", "file", *file, "error", err.Error())
	}

	logging.Info("export parsed",
		"records", len(payload.Weights),
		"processed_gate_ids", len(payload.ProcessedGateIDs),
	)

	if *dryRun {
		for _, rec := range payload.Weights {
			key, _ := reconciliation.RecordSessionKey(rec)
			logging.Info("would import",
				"pallet_id", rec.PalletID,
				"gate_entry_id", rec.GateEntryID,
				"session_key", key,
			)
		}
		return
	}

	cfg := config.Load()
	pool := db.Connect(cfg)
	defer pool.Close()

	weightRepo := repositories.NewWeightRepository(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	imported := 0
	for _, rec := range payload.Weights {
		if err := weightRepo.CreateImported(ctx, rec); err != nil {
			logging.Error("import failed", "pallet_id", rec.PalletID, "error", err.Error())
			continue
		}
		imported++
	}

	logging.Info("import finished", "imported", imported, "total", len(payload.Weights))
}
