// Package db writes records straight into the Postgres database behind a
// Supabase project, bypassing the REST API.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pairload/internal/logging"
	"github.com/vvka-141/pairload/internal/retry"
	"github.com/vvka-141/pairload/pkg/pairload"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns is small because batches are written one at a time.
	DefaultMaxConns = 2

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps the connection across slow batches.
	DefaultMaxConnIdleTime = 30 * time.Minute

	// ApplicationName is reported to the server in pg_stat_activity.
	ApplicationName = "pairload"
)

// Connector opens pgx pools with automatic retry on transient failures.
type Connector struct {
	config        *pgxpool.Config
	retryExecutor *retry.Executor
	logger        pairload.Logger
}

// NewConnector parses connStr and prepares a connector. Parsing does not
// contact the server. Retry behavior uses the pairload defaults:
// DefaultRetryMaxAttempts attempts, exponential backoff starting at
// DefaultRetryInitialDelay, capped at DefaultRetryMaxDelay.
func NewConnector(connStr string, logger pairload.Logger) (*Connector, error) {
	if strings.TrimSpace(connStr) == "" {
		return nil, fmt.Errorf("database URL is empty: %w", pairload.ErrInvalidConfig)
	}
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL %s: %w", Redact(connStr), pairload.ErrInvalidConfig)
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	configurePool(poolConfig, logger)

	strategy := retry.NewExponentialBackoff(pairload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(pairload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(pairload.DefaultRetryMaxDelay),
	)
	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("connection attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
		})

	return &Connector{config: poolConfig, retryExecutor: executor, logger: logger}, nil
}

func configurePool(poolConfig *pgxpool.Config, logger pairload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// Host, Port and Database describe the target for log and error messages.
func (c *Connector) Host() string     { return c.config.ConnConfig.Host }
func (c *Connector) Port() uint16     { return c.config.ConnConfig.Port }
func (c *Connector) Database() string { return c.config.ConnConfig.Database }

// Connect establishes a connection pool and pings it, retrying transient failures.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	c.logger.Verbose("connecting to %s:%d/%s", c.Host(), c.Port(), c.Database())

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = pgxpool.NewWithConfig(ctx, c.config.Copy())
		if err != nil {
			return wrapConnectionError(err, c.Host(), int(c.Port()), c.Database())
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.Host(), int(c.Port()), c.Database())
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return pool, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - The database is paused (resume the project in the Supabase dashboard)
  - Wrong host or port (direct connections use 5432, the pooler 6543)
  - Firewall blocking the connection

Original error: %w`, pairload.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled (copy it from Project Settings > Database)
  - Direct connections are IPv6 only (use the pooler host on IPv4 networks)
  - Network connection issue

Original error: %w`, pairload.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: password authentication failed for database "%s"

Possible causes:
  - Wrong database password (reset it in Project Settings > Database)
  - Pooler connections need the user in the form postgres.<project-ref>

Original error: %w`, pairload.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database "%s" does not exist

Supabase projects use the database "postgres".

Original error: %w`, pairload.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, pairload.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error

Possible causes:
  - Server requires SSL (add ?sslmode=require to the URL)
  - Certificate verification failed (use sslmode=require instead of verify-full)

Original error: %w`, pairload.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections") || strings.Contains(errStr, "max client connections"):
		return fmt.Errorf(`%w: too many connections to database "%s"

Possible causes:
  - Connection limit of the compute size reached
  - Stale connections from other clients (use the pooler URL instead)

Original error: %w`, pairload.ErrConnectionFailed, database, err)

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", pairload.ErrConnectionFailed, err)
	}
}
