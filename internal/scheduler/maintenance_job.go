package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/database"
)

// MaintenanceJob keeps the store healthy on a long-running daemon: an
// integrity check followed by a WAL checkpoint so the log file cannot
// grow without bound under the ledger profile's full-sync writes.
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates the database maintenance job.
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Name implements Job.
func (j *MaintenanceJob) Name() string { return "db_maintenance" }

// Run checks integrity and truncates the WAL.
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		// Ledger corruption is critical - cannot auto-recover
		j.log.Error().
			Err(err).
			Str("database", j.db.Name()).
			Str("path", j.db.Path()).
			Msg("Database integrity check failed")
		return err
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().
			Err(err).
			Str("database", j.db.Name()).
			Msg("WAL checkpoint failed")
		return err
	}

	j.log.Debug().Str("database", j.db.Name()).Msg("Database maintenance completed")
	return nil
}
