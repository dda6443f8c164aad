package pairload

import (
	"errors"
	"fmt"
)

// Value is a single table cell. nil means the source had no value.
// Known dynamic types are string, json.Number, bool, and nested JSON
// values decoded into map[string]any or []any.
type Value = any

// Table is an ordered column set with rows in source order.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Validate checks that every row has one cell per column.
func (t *Table) Validate() error {
	var errs []error
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			errs = append(errs, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns)))
		}
	}
	return errors.Join(errs...)
}

// Record is one row of the remote table. Nil pointers are persisted as NULL.
type Record struct {
	ID                string  `json:"id"`
	Prompt            string  `json:"prompt"`
	Chosen            *string `json:"chosen"`
	Rejected          *string `json:"rejected"`
	TimestampChosen   *string `json:"timestamp_chosen"`
	TimestampRejected *string `json:"timestamp_rejected"`
	UpvotesChosen     *int64  `json:"upvotes_chosen"`
	UpvotesRejected   *int64  `json:"upvotes_rejected"`
}

// RecordColumns are the remote table columns in the order Values returns them.
var RecordColumns = []string{
	"id",
	"prompt",
	"chosen",
	"rejected",
	"timestamp_chosen",
	"timestamp_rejected",
	"upvotes_chosen",
	"upvotes_rejected",
}

// Values returns the record as a row aligned with RecordColumns.
// Nil pointers become untyped nil so drivers write NULL.
func (r Record) Values() []any {
	return []any{
		r.ID,
		r.Prompt,
		strOrNil(r.Chosen),
		strOrNil(r.Rejected),
		strOrNil(r.TimestampChosen),
		strOrNil(r.TimestampRejected),
		intOrNil(r.UpvotesChosen),
		intOrNil(r.UpvotesRejected),
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intOrNil(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
