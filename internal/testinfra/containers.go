// Package testinfra starts throwaway Postgres servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// PostgresImage matches the major version Supabase projects run.
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres runs a plain Postgres container. initScripts are executed
// once by the image entrypoint before the server accepts connections.
func StartPostgres(ctx context.Context, initScripts ...string) (*PostgresContainer, error) {
	opts := []testcontainers.ContainerCustomizer{
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		),
	}
	if len(initScripts) > 0 {
		opts = append(opts, postgres.WithInitScripts(initScripts...))
	}

	ctr, err := postgres.Run(ctx, PostgresImage, opts...)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}
