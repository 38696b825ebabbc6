// Package testutil provides helpers for tests that need a live postgres
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/internal/wproofd/database"
	"github.com/wrale/wrale-proof/internal/wproofd/migrations"
)

// DatabaseURLEnv names the variable holding the admin connection string.
// Tests that need postgres are skipped when it is unset.
const DatabaseURLEnv = "WPROOF_TEST_DATABASE_URL"

// SetupTestDB creates a throwaway database with the schema applied. The
// returned func drops it.
func SetupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	adminURL := os.Getenv(DatabaseURLEnv)
	if adminURL == "" {
		t.Skipf("%s not set, skipping postgres test", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := fmt.Sprintf("wproof_test_%d", time.Now().UnixNano())
	ident := pq.QuoteIdentifier(name)
	require.NoError(t, admin(ctx, adminURL, "CREATE DATABASE "+ident))

	u, err := url.Parse(adminURL)
	require.NoError(t, err)
	u.Path = "/" + name

	db, err := database.Open(ctx, u.String(), database.Pool{MaxOpen: 4, MaxIdle: 2})
	require.NoError(t, err)

	_, err = migrations.NewMigrator(db, zerolog.Nop()).Up(ctx)
	require.NoError(t, err)

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("closing %s: %v", name, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := admin(ctx, adminURL, "DROP DATABASE IF EXISTS "+ident+" WITH (FORCE)"); err != nil {
			t.Logf("dropping %s: %v", name, err)
		}
	}
}

// admin runs one statement on the admin connection
func admin(ctx context.Context, dsn, stmt string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, stmt)
	return err
}
