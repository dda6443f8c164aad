package fetcher

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// WriteCSV writes table to path with a header row and no index column,
// replacing any existing file. The data goes to a temporary file in the same
// directory first, so a failed run leaves the previous file in place.
func WriteCSV(path string, table *pairload.Table) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j := range record {
			var v pairload.Value
			if j < len(row) {
				v = row[j]
			}
			if record[j], err = FormatValue(v); err != nil {
				return fmt.Errorf("row %d column %q: %w", i, table.Columns[j], err)
			}
		}
		if err = w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move csv into place: %w", err)
	}
	return nil
}

// FormatValue renders one cell. Missing values are empty cells, booleans
// are True/False, and nested values are compact JSON.
func FormatValue(v pairload.Value) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
