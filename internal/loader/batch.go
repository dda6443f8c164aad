package loader

import "github.com/vvka-141/pairload/pkg/pairload"

// Batches splits records into consecutive chunks of at most size.
// The chunks share the records' backing array.
func Batches(records []pairload.Record, size int) [][]pairload.Record {
	if size <= 0 || len(records) == 0 {
		return nil
	}
	out := make([][]pairload.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end:end])
	}
	return out
}
