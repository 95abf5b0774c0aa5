// Package pgtest connects tests to a disposable PostgreSQL database.
package pgtest

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DSNEnv names the variable holding the test database DSN.
const DSNEnv = "TEST_POSTGRES_DSN"

// Pool returns a migrated pool for the database in TEST_POSTGRES_DSN and
// skips the test when the variable is unset.
func Pool(t *testing.T, migrations fs.FS) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("skipping postgres test (set %s to run)", DSNEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, postgres.Migrate(pool, migrations))
	return pool
}
