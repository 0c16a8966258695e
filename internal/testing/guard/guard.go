// Package guard flips the runtime into test mode when imported, so
// binaries under test never open sockets or pools. Import it for side
// effect only.
package guard

import "os"

func init() {
	if os.Getenv("MERIDIAN_TEST_MODE") == "" {
		_ = os.Setenv("MERIDIAN_TEST_MODE", "1")
	}
}
