package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/bragboard/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRegisterAndRunByName(t *testing.T) {
	s := jobs.NewScheduler(time.Second, zap.NewNop())

	onDemand := &countingJob{name: "manual"}
	nightly := &countingJob{name: "nightly", schedule: "0 3 * * *", err: errors.New("boom")}
	require.NoError(t, s.Register(onDemand))
	require.NoError(t, s.Register(nightly))
	assert.Equal(t, []string{"manual", "nightly"}, s.Jobs())

	require.NoError(t, s.RunByName(t.Context(), "manual"))
	assert.Equal(t, 1, onDemand.runs)

	assert.EqualError(t, s.RunByName(t.Context(), "nightly"), "boom")
	assert.Error(t, s.RunByName(t.Context(), "missing"))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := jobs.NewScheduler(time.Second, zap.NewNop())
	assert.Error(t, s.Register(&countingJob{name: "broken", schedule: "every tuesday"}))
}

func TestStartStop(t *testing.T) {
	s := jobs.NewScheduler(time.Second, zap.NewNop())
	require.NoError(t, s.Register(&countingJob{name: "hourly", schedule: "@hourly"}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
