package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run the config tests outside GO_ENV=test. Load reads
// .env.<GO_ENV>, so a developer's .env.development could otherwise point
// ConnectDatabase at a real database.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: config tests must run with GO_ENV=test (current GO_ENV=%q)\n"+
			"Run them with:\n    GO_ENV=test go test ./...\n", env)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
