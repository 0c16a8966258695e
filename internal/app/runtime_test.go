package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/meridian-erp/meridian-erp/internal/testing/guard"
)

func TestInTestModeHonoursGuard(t *testing.T) {
	RefreshTestMode()
	require.True(t, InTestMode(), "guard import should activate test mode")
}

func TestRefreshTestMode(t *testing.T) {
	t.Setenv(TestModeEnv, "0")
	RefreshTestMode()
	require.False(t, InTestMode())

	t.Setenv(TestModeEnv, "1")
	RefreshTestMode()
	require.True(t, InTestMode())
}
