package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trkart/internal/config"
	"trkart/internal/db"
	"trkart/internal/models"
)

// setupTestDB connects to the database named by the usual DB_* env
// vars and applies the schema. Tests are skipped when no database is
// reachable, so the unit suite stays runnable without infrastructure.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err, "failed to load config")

	logger := cfg.Logger.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		t.Skipf("no test database available: %v", err)
	}

	require.NoError(t, database.Migrate(ctx), "failed to apply schema")

	return database
}

func cleanupTestDB(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(),
		`TRUNCATE idempotency_keys, transactions, cards, customers RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "failed to truncate test tables")

	require.NoError(t, database.Close())
}

var testCustomerSeq int

// createTestCustomer inserts a customer with a unique email and
// returns it.
func createTestCustomer(t *testing.T, database *db.DB) *models.Customer {
	t.Helper()

	testCustomerSeq++
	customer := &models.Customer{
		CustomerNumber: fmt.Sprintf("%010d", testCustomerSeq),
		FullName:       "Test Customer",
		Email:          fmt.Sprintf("customer%d@example.com", testCustomerSeq),
		PasswordHash:   "not-a-real-hash",
		Verified:       true,
	}

	repo := NewCustomerRepository(database)
	require.NoError(t, repo.Create(context.Background(), customer))
	return customer
}
