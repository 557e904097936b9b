//go:build integration

package testutil

import (
	"context"
	"testing"

	"github.com/deppfellow/dealer-dashboard/internal/config"
	"github.com/deppfellow/dealer-dashboard/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const postgresImage = "postgres:16-alpine"

// StartPostgres runs a PostgreSQL container, applies the embedded migrations
// and returns a config pointing at it together with an open Database.
// Both are torn down when the test finishes.
func StartPostgres(t *testing.T) (*config.Config, *database.Database) {
	t.Helper()

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("dealerdash"),
		postgres.WithUsername("dealerdash"),
		postgres.WithPassword("dealerdash"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	connConfig, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Primary.Env = "test"
	cfg.Database.Host = connConfig.Host
	cfg.Database.Port = int(connConfig.Port)
	cfg.Database.User = connConfig.User
	cfg.Database.Password = connConfig.Password
	cfg.Database.Name = connConfig.Database
	cfg.Database.SSLMode = "disable"
	cfg.Observability.Environment = "test"

	logger := zerolog.Nop()

	require.NoError(t, database.Migrate(ctx, &logger, cfg))

	db, err := database.New(cfg, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return cfg, db
}
