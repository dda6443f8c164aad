// Package fetcher downloads a dataset split and stores it as a CSV that
// matches the remote table's column names.
package fetcher

import (
	"context"
	"fmt"

	"github.com/vvka-141/pairload/internal/logging"
	"github.com/vvka-141/pairload/pkg/pairload"
)

// Options selects what to fetch and where to write it.
type Options struct {
	Dataset string
	Split   string
	Output  string
}

// WithDefaults fills empty fields from the pairload constants.
func (o Options) WithDefaults() Options {
	if o.Dataset == "" {
		o.Dataset = pairload.DefaultDataset
	}
	if o.Split == "" {
		o.Split = pairload.DefaultSplit
	}
	if o.Output == "" {
		o.Output = pairload.DefaultFetchOutput
	}
	return o
}

// Result summarizes a completed fetch.
type Result struct {
	Path    string
	Rows    int
	Columns int
	Dropped []string
}

// Service runs the fetch stage.
type Service struct {
	source pairload.DatasetSource
	logger pairload.Logger
}

// NewService creates a fetch service. A nil logger discards output.
func NewService(source pairload.DatasetSource, logger pairload.Logger) *Service {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Service{source: source, logger: logger}
}

// Fetch downloads the split, normalizes its columns and writes the CSV.
// Every failure wraps pairload.ErrFetchFailed.
func (s *Service) Fetch(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	s.logger.Info("Loading dataset %s from Hugging Face...", opts.Dataset)
	table, err := s.source.FetchTable(ctx, opts.Dataset, opts.Split)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s split %q: %w", pairload.ErrFetchFailed, opts.Dataset, opts.Split, err)
	}

	s.logger.Info("Converting dataset to table...")
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%w: malformed dataset: %w", pairload.ErrFetchFailed, err)
	}

	s.logger.Info("Renaming columns to match Supabase schema...")
	dropped := ApplySchema(table, pairload.ColumnRenames, pairload.DroppedColumns)
	if len(dropped) > 0 {
		s.logger.Info("Dropping columns not in schema: %v...", dropped)
	}
	s.logger.Verbose("columns: %v", table.Columns)

	s.logger.Info("Saving table to %s...", opts.Output)
	if err := WriteCSV(opts.Output, table); err != nil {
		return nil, fmt.Errorf("%w: %w", pairload.ErrFetchFailed, err)
	}

	s.logger.Info("Successfully downloaded and saved dataset to %s", opts.Output)
	s.logger.Info("The CSV file contains %d rows and %d columns.", len(table.Rows), len(table.Columns))

	return &Result{
		Path:    opts.Output,
		Rows:    len(table.Rows),
		Columns: len(table.Columns),
		Dropped: dropped,
	}, nil
}
