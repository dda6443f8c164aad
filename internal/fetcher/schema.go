package fetcher

import (
	"github.com/vvka-141/pairload/pkg/pairload"
)

// ApplySchema renames columns per renames, then removes the columns in drops
// that exist. Row order and count are untouched. It returns the names of the
// columns actually dropped, in drops order.
func ApplySchema(table *pairload.Table, renames map[string]string, drops []string) []string {
	for i, col := range table.Columns {
		if to, ok := renames[col]; ok {
			table.Columns[i] = to
		}
	}

	var dropped []string
	keep := make([]bool, len(table.Columns))
	for i := range keep {
		keep[i] = true
	}
	for _, name := range drops {
		if idx := table.ColumnIndex(name); idx >= 0 && keep[idx] {
			keep[idx] = false
			dropped = append(dropped, name)
		}
	}
	if len(dropped) == 0 {
		return nil
	}

	table.Columns = filter(table.Columns, keep)
	for r, row := range table.Rows {
		table.Rows[r] = filter(row, keep)
	}
	return dropped
}

func filter[T any](in []T, keep []bool) []T {
	out := make([]T, 0, len(in))
	for i, v := range in {
		if i < len(keep) && keep[i] {
			out = append(out, v)
		}
	}
	return out
}
