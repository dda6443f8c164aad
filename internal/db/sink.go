package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// Sink writes each batch with a single COPY. It expects the remote table
// to type id as uuid and the timestamp columns as timestamptz.
type Sink struct {
	pool *pgxpool.Pool
}

var _ pairload.SinkCloser = (*Sink)(nil)

// NewSink wraps an open pool. The sink owns the pool and closes it.
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// Insert copies records into table. A failed COPY leaves the table unchanged.
func (s *Sink) Insert(ctx context.Context, table string, records []pairload.Record) error {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row, err := copyRow(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		rows[i] = row
	}

	n, err := s.pool.CopyFrom(ctx, splitTableName(table), pairload.RecordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(records))
	}
	return nil
}

// Close closes the pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// splitTableName maps "schema.table" to a two-part identifier and anything
// else to a single identifier. Dashes in table names are kept verbatim.
func splitTableName(table string) pgx.Identifier {
	if schema, name, ok := strings.Cut(table, "."); ok && schema != "" && name != "" {
		return pgx.Identifier{schema, name}
	}
	return pgx.Identifier{table}
}

// copyRow converts a record to values the binary COPY encoder accepts for
// uuid and timestamptz columns.
func copyRow(rec pairload.Record) ([]any, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", rec.ID, err)
	}
	chosenAt, err := parseTimestamp(rec.TimestampChosen)
	if err != nil {
		return nil, err
	}
	rejectedAt, err := parseTimestamp(rec.TimestampRejected)
	if err != nil {
		return nil, err
	}

	values := rec.Values()
	values[0] = id
	values[4] = chosenAt
	values[5] = rejectedAt
	return values, nil
}

func parseTimestamp(s *string) (any, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", *s, err)
	}
	return t, nil
}
