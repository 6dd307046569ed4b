package scheduler_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoran/folio/internal/scheduler"
	foliotesting "github.com/avoran/folio/internal/testing"
)

func TestMaintenanceJob_HealthyDatabase(t *testing.T) {
	db := foliotesting.NewTestDB(t)
	job := scheduler.NewMaintenanceJob(db, zerolog.Nop())

	assert.Equal(t, "db_maintenance", job.Name())
	assert.NoError(t, job.Run())
}

func TestScheduler_RunNow(t *testing.T) {
	db := foliotesting.NewTestDB(t)
	sched := scheduler.New(zerolog.Nop())

	require.NoError(t, sched.RunNow(scheduler.NewMaintenanceJob(db, zerolog.Nop())))
}

type brokenJob struct{ err error }

func (j brokenJob) Run() error { return j.err }

func (j brokenJob) Name() string { return "broken" }

func TestScheduler_RunNowPropagatesFailure(t *testing.T) {
	boom := errors.New("checkpoint stuck")
	sched := scheduler.New(zerolog.Nop())

	assert.ErrorIs(t, sched.RunNow(brokenJob{err: boom}), boom)
}
