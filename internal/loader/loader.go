// Package loader reads a pairwise-story CSV and inserts it into the remote
// table in fixed-size batches.
//
// A run is strictly sequential: each batch is sent only after the previous
// one succeeded. The first failed batch ends the run and batches already
// inserted stay in place. Every run inserts fresh records with new IDs, so
// loading the same file twice duplicates its rows.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/pairload/internal/logging"
	"github.com/vvka-141/pairload/pkg/pairload"
)

// SinkProvider checks sink settings up front and opens the sink only once
// there is data to send.
type SinkProvider interface {
	// Validate must not contact the remote service.
	Validate() error
	Open(ctx context.Context) (pairload.SinkCloser, error)
}

// Options configure one load run.
type Options struct {
	Input     string
	Table     string
	BatchSize int
	DryRun    bool
}

// WithDefaults fills empty fields from the pairload constants.
func (o Options) WithDefaults() Options {
	if o.Input == "" {
		o.Input = pairload.DefaultLoadInput
	}
	if o.Table == "" {
		o.Table = pairload.DefaultTable
	}
	if o.BatchSize <= 0 {
		o.BatchSize = pairload.DefaultBatchSize
	}
	return o
}

// Result counts what a run did. It is returned alongside errors too, so
// callers can report how many records were persisted before a failure.
type Result struct {
	Rows     int
	Records  int
	Skipped  int
	Batches  int
	Inserted int
}

// BatchError reports the batch that failed. It matches both
// pairload.ErrBatchFailed and the underlying cause with errors.Is.
type BatchError struct {
	Batch    int // 1-based
	Size     int
	Inserted int // records persisted by earlier batches
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("error inserting batch %d: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() []error {
	return []error{pairload.ErrBatchFailed, e.Err}
}

// Service runs the load stage.
type Service struct {
	provider    SinkProvider
	transformer *Transformer
	logger      pairload.Logger
}

// NewService creates a load service. A nil logger discards output and a
// nil transformer assigns random UUIDs.
func NewService(provider SinkProvider, transformer *Transformer, logger pairload.Logger) *Service {
	if transformer == nil {
		transformer = NewTransformer()
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Service{provider: provider, transformer: transformer, logger: logger}
}

// Load validates the sink settings and the input file, transforms every
// row, and inserts the records batch by batch. Nothing is sent when the
// settings or the file are missing.
func (s *Service) Load(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	result := &Result{}

	if !opts.DryRun {
		if s.provider == nil {
			return result, fmt.Errorf("no sink configured: %w", pairload.ErrInvalidConfig)
		}
		if err := s.provider.Validate(); err != nil {
			return result, err
		}
	}

	s.logger.Info("Reading %s...", opts.Input)
	file, err := ReadCSV(opts.Input)
	if err != nil {
		return result, err
	}
	result.Rows = len(file.Rows)
	s.logger.Info("Loaded %d rows", result.Rows)
	for _, col := range pairload.LoadColumns {
		if !file.HasColumn(col) {
			s.logger.Verbose("column %q not in %s, every value reads as missing", col, opts.Input)
		}
	}

	records, skipped := s.transformer.TransformAll(file.Rows)
	result.Records, result.Skipped = len(records), skipped
	s.logger.Verbose("%d records to insert, %d rows without prompt skipped", len(records), skipped)

	batches := Batches(records, opts.BatchSize)
	if opts.DryRun {
		for i, batch := range batches {
			s.logger.Info("Would insert batch %d: %d records", i+1, len(batch))
		}
		result.Batches = len(batches)
		s.logger.Info("Dry run: %d records in %d batches for %s table", len(records), len(batches), opts.Table)
		return result, nil
	}

	sink, err := s.provider.Open(ctx)
	if err != nil {
		return result, err
	}
	defer sink.Close()

	s.logger.Info("Inserting data into Supabase...")
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := sink.Insert(ctx, opts.Table, batch); err != nil {
			return result, &BatchError{Batch: i + 1, Size: len(batch), Inserted: result.Inserted, Err: err}
		}
		result.Batches++
		result.Inserted += len(batch)
		s.logger.Info("Inserted batch %d: %d records (Total: %d)", i+1, len(batch), result.Inserted)
	}

	s.logger.Info("Successfully inserted %d records into %s table", result.Inserted, opts.Table)
	return result, nil
}

// IsPartial reports whether err left some records persisted.
func IsPartial(err error) bool {
	var be *BatchError
	return errors.As(err, &be) && be.Inserted > 0
}
