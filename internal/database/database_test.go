package database_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clerk/internal/database"
)

func TestMigrate_Idempotent(t *testing.T) {
	url := os.Getenv(database.TestURLEnv)
	if url == "" {
		t.Skipf("%s not set", database.TestURLEnv)
	}

	ctx := context.Background()

	db, err := database.New(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))

	migrations, err := database.Migrations()
	require.NoError(t, err)
	require.Equal(t, len(migrations), n)
}
