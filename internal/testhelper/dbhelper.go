// Package testhelper gives integration tests a database and a scratch
// copy of the pairwise table.
package testhelper

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pairload/internal/testinfra"
)

// EnvTestConn overrides the auto-started container.
const EnvTestConn = "PAIRLOAD_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error

	tableSeq atomic.Int64
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartPostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PAIRLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(EnvTestConn); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", EnvTestConn, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreatePairwiseTable creates a uniquely named table with the remote
// table's columns and drops it when the test ends. The name contains
// dashes like the production table so quoting is exercised.
func CreatePairwiseTable(t *testing.T, connString string) string {
	t.Helper()

	name := fmt.Sprintf("writingprompts-pairwise-test-%d-%d", time.Now().UnixNano()%1e6, tableSeq.Add(1))
	ident := pgx.Identifier{name}.Sanitize()

	ExecSQL(t, connString, fmt.Sprintf(`CREATE TABLE %s (
	id uuid PRIMARY KEY,
	prompt text NOT NULL,
	chosen text,
	rejected text,
	timestamp_chosen timestamptz,
	timestamp_rejected timestamptz,
	upvotes_chosen integer,
	upvotes_rejected integer
)`, ident))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			return
		}
		defer conn.Close(ctx)
		_, _ = conn.Exec(ctx, "DROP TABLE IF EXISTS "+ident)
	})
	return name
}

// ExecSQL runs sql on a fresh connection and fails the test on error.
func ExecSQL(t *testing.T, connString, sql string, args ...any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, connString, table string) int {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close(ctx)

	var n int
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
