package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/jobs"
)

func TestTaskForNameLowStockCarriesBusinessScope(t *testing.T) {
	task, err := TaskForName(jobs.TaskLowStockScan, 42)
	require.NoError(t, err)
	require.Equal(t, jobs.TaskLowStockScan, task.Type())

	var payload jobs.LowStockPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, int64(42), payload.BusinessID)
}

func TestTaskForNameMaintenanceTasks(t *testing.T) {
	for _, name := range []string{jobs.TaskIdempotencyCleanup, jobs.TaskAvailabilityWarmup} {
		task, err := TaskForName(name, 0)
		require.NoError(t, err)
		require.Equal(t, name, task.Type())
	}
}

func TestTaskForNameUnknown(t *testing.T) {
	_, err := TaskForName("reports:generate", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported job")
}
