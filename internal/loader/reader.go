package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// Row is one CSV data row addressed by column name.
type Row struct {
	index  map[string]int
	values []string
}

// Get returns the raw cell for column. Unknown columns and cells past the
// end of a short row read as "".
func (r Row) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// File is a fully read CSV.
type File struct {
	Header []string
	Rows   []Row
}

// HasColumn reports whether the header contains column.
func (f *File) HasColumn(column string) bool {
	for _, h := range f.Header {
		if h == column {
			return true
		}
	}
	return false
}

// ReadCSV reads the whole file at path into memory. A leading byte order
// mark is removed. A missing file wraps pairload.ErrInputNotFound.
func ReadCSV(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, pairload.ErrInputNotFound)
		}
		return nil, err
	}
	defer f.Close()

	file, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return file, nil
}

// ParseCSV reads CSV content with a header row.
func ParseCSV(r io.Reader) (*File, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	// Bare quotes inside unquoted fields are kept as literal characters.
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	file := &File{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		file.Rows = append(file.Rows, Row{index: index, values: rec})
	}
	return file, nil
}
