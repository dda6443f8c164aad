package loader

import (
	"github.com/google/uuid"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// Transformer turns CSV rows into records.
type Transformer struct {
	newID func() string
}

// NewTransformer creates a Transformer that assigns random UUIDs.
func NewTransformer() *Transformer {
	return &Transformer{newID: uuid.NewString}
}

// NewTransformerWithIDs creates a Transformer with a custom ID generator.
func NewTransformerWithIDs(newID func() string) *Transformer {
	return &Transformer{newID: newID}
}

// Transform converts one row. ok is false when the row has no prompt;
// such rows are skipped, not reported.
func (t *Transformer) Transform(row Row) (rec pairload.Record, ok bool) {
	prompt := SafeString(row.Get("prompt"))
	if prompt == nil || *prompt == "" {
		return pairload.Record{}, false
	}

	return pairload.Record{
		ID:                t.newID(),
		Prompt:            *prompt,
		Chosen:            SafeString(row.Get("chosen")),
		Rejected:          SafeString(row.Get("rejected")),
		TimestampChosen:   SafeTimestamp(row.Get("timestamp_chosen")),
		TimestampRejected: SafeTimestamp(row.Get("timestamp_rejected")),
		UpvotesChosen:     SafeInt(row.Get("upvotes_chosen")),
		UpvotesRejected:   SafeInt(row.Get("upvotes_rejected")),
	}, true
}

// TransformAll converts every row in file order and returns the records
// plus the number of rows skipped.
func (t *Transformer) TransformAll(rows []Row) ([]pairload.Record, int) {
	records := make([]pairload.Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, ok := t.Transform(row)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
