package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// TestModeEnv short-circuits the binaries when set to "1" so package
// tests can import them without starting servers.
const TestModeEnv = "MERIDIAN_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeInit sync.Once
)

// InTestMode reports whether runtime side effects should be skipped.
// The environment is read once; use RefreshTestMode after changing it.
func InTestMode() bool {
	testModeInit.Do(RefreshTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads the environment flag.
func RefreshTestMode() {
	testMode.Store(os.Getenv(TestModeEnv) == "1")
}
