package loader

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func mustParse(t *testing.T, content string) *File {
	t.Helper()
	file, err := ParseCSV(strings.NewReader(content))
	require.NoError(t, err)
	return file
}

func TestTransformer_Transform(t *testing.T) {
	file := mustParse(t, "prompt,chosen,rejected,timestamp_chosen,timestamp_rejected,upvotes_chosen,upvotes_rejected\n"+
		"write a story,Once...,Once...,1700000000,1700000050,10,3\n")

	rec, ok := NewTransformerWithIDs(sequentialIDs()).Transform(file.Rows[0])
	require.True(t, ok)

	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, "write a story", rec.Prompt)
	require.NotNil(t, rec.Chosen)
	assert.Equal(t, "Once...", *rec.Chosen)
	require.NotNil(t, rec.TimestampChosen)
	assert.Equal(t, "2023-11-14T22:13:20+00:00", *rec.TimestampChosen)
	require.NotNil(t, rec.TimestampRejected)
	assert.Equal(t, "2023-11-14T22:14:10+00:00", *rec.TimestampRejected)
	require.NotNil(t, rec.UpvotesChosen)
	assert.Equal(t, int64(10), *rec.UpvotesChosen)
	require.NotNil(t, rec.UpvotesRejected)
	assert.Equal(t, int64(3), *rec.UpvotesRejected)
}

func TestTransformer_NullableFields(t *testing.T) {
	file := mustParse(t, "prompt,chosen,rejected,timestamp_chosen,timestamp_rejected,upvotes_chosen,upvotes_rejected\n"+
		"p,,nan,abc,,x,NaN\n")

	rec, ok := NewTransformer().Transform(file.Rows[0])
	require.True(t, ok)

	assert.Nil(t, rec.Chosen)
	assert.Nil(t, rec.Rejected)
	assert.Nil(t, rec.TimestampChosen)
	assert.Nil(t, rec.TimestampRejected)
	assert.Nil(t, rec.UpvotesChosen)
	assert.Nil(t, rec.UpvotesRejected)
	assert.Len(t, rec.ID, 36)
}

func TestTransformer_SkipsRowsWithoutPrompt(t *testing.T) {
	file := mustParse(t, "prompt,chosen\n,c1\nNaN,c2\nkept,c3\nnan,c4\n")

	records, skipped := NewTransformerWithIDs(sequentialIDs()).TransformAll(file.Rows)

	require.Len(t, records, 1)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, "kept", records[0].Prompt)
}

func TestTransformer_MissingPromptColumn(t *testing.T) {
	file := mustParse(t, "chosen\nc1\n")

	records, skipped := NewTransformer().TransformAll(file.Rows)

	assert.Empty(t, records)
	assert.Equal(t, 1, skipped)
}

func TestTransformer_FreshIDsPerRow(t *testing.T) {
	file := mustParse(t, "prompt\nsame\nsame\nsame\n")

	records, _ := NewTransformer().TransformAll(file.Rows)

	seen := map[string]bool{}
	for _, r := range records {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, seen, 3)
}
