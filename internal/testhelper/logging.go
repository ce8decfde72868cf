package testhelper

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// init disables logging for tests unless DRV_TEST_LOG is set
func init() {
	if isTesting() && os.Getenv("DRV_TEST_LOG") == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
}

// isTesting returns true if we're currently running tests
func isTesting() bool {
	return testing.Testing() ||
		os.Getenv("GO_TEST") != "" ||
		(len(os.Args) > 1 && os.Args[1] == "test")
}

// Run executes a package's tests with logging silenced and the spinner
// disabled. Packages call it from their own TestMain.
func Run(m *testing.M) int {
	if os.Getenv("DRV_TEST_LOG") == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
	if os.Getenv("DRV_TEST") == "" {
		_ = os.Setenv("DRV_TEST", "1")
	}
	return m.Run()
}
