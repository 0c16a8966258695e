package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestNewLowStockScanTaskCarriesBusinessScope(t *testing.T) {
	task, err := NewLowStockScanTask(LowStockPayload{BusinessID: 7})
	require.NoError(t, err)
	require.Equal(t, TaskLowStockScan, task.Type())

	var payload LowStockPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, int64(7), payload.BusinessID)
}

func TestMaintenanceTasksHaveNoPayload(t *testing.T) {
	require.Equal(t, TaskIdempotencyCleanup, NewIdempotencyCleanupTask().Type())
	require.Empty(t, NewIdempotencyCleanupTask().Payload())
	require.Equal(t, TaskAvailabilityWarmup, NewAvailabilityWarmupTask().Type())
}

func TestLowStockScanSkipsRetryOnBadPayload(t *testing.T) {
	tasks := &Tasks{}
	err := tasks.lowStockScan(context.Background(), asynq.NewTask(TaskLowStockScan, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestBuildSchedulerSkipsEmptyEntries(t *testing.T) {
	scheduler, err := buildScheduler(WorkerConfig{})
	require.NoError(t, err)
	require.Nil(t, scheduler)

	scheduler, err = buildScheduler(WorkerConfig{Cron: []CronRegistration{
		{Spec: "", Task: NewIdempotencyCleanupTask()},
		{Spec: "30 2 * * *", Task: nil},
		{Spec: "30 2 * * *", Task: NewIdempotencyCleanupTask()},
	}})
	require.NoError(t, err)
	require.NotNil(t, scheduler)
}
