package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/tipster-edge/internal/config"
)

// TestConfigEnv names the config file used by integration tests.
const TestConfigEnv = "TIPSTER_EDGE_TEST_CONFIG"

// SetupTestDB connects to the integration database, skipping the test when none is configured.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestConfigEnv)
	if path == "" {
		t.Skipf("Integration test - set %s to a config file with a reachable database", TestConfigEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg, true)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	return db
}

// TeardownTestDB removes test rows and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, "TRUNCATE predictions, parlays"); err != nil {
		t.Logf("warning: failed to truncate test tables: %v", err)
	}
	db.Close()
}
