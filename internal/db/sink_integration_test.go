package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pairload/internal/testhelper"
	"github.com/vvka-141/pairload/pkg/pairload"
)

func openSink(t *testing.T, connString string) *Sink {
	t.Helper()
	p := &Provider{URL: connString}
	require.NoError(t, p.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sink, err := p.Open(ctx)
	require.NoError(t, err)
	t.Cleanup(sink.Close)
	return sink.(*Sink)
}

func TestSink_Insert(t *testing.T) {
	connString := testhelper.RequireDatabase(t)
	table := testhelper.CreatePairwiseTable(t, connString)
	sink := openSink(t, connString)
	ctx := context.Background()

	id := uuid.NewString()
	records := []pairload.Record{
		{
			ID:                id,
			Prompt:            "write a story",
			Chosen:            ptr("Once..."),
			Rejected:          ptr("Once..."),
			TimestampChosen:   ptr("2023-11-14T22:13:20+00:00"),
			TimestampRejected: ptr("2023-11-14T22:14:10.250000+00:00"),
			UpvotesChosen:     ptr(int64(10)),
			UpvotesRejected:   ptr(int64(3)),
		},
		{ID: uuid.NewString(), Prompt: "nulls everywhere"},
	}
	require.NoError(t, sink.Insert(ctx, table, records))
	assert.Equal(t, 2, testhelper.CountRows(t, connString, table))

	var (
		chosenAt time.Time
		upvotes  int64
	)
	err := sink.pool.QueryRow(ctx,
		"SELECT timestamp_chosen, upvotes_chosen FROM "+pgx.Identifier{table}.Sanitize()+" WHERE id = $1", id,
	).Scan(&chosenAt, &upvotes)
	require.NoError(t, err)
	assert.True(t, time.Unix(1700000000, 0).Equal(chosenAt))
	assert.Equal(t, int64(10), upvotes)

	var chosen *string
	err = sink.pool.QueryRow(ctx,
		"SELECT chosen FROM "+pgx.Identifier{table}.Sanitize()+" WHERE prompt = 'nulls everywhere'",
	).Scan(&chosen)
	require.NoError(t, err)
	assert.Nil(t, chosen)
}

func TestSink_FailedBatchLeavesTableUnchanged(t *testing.T) {
	connString := testhelper.RequireDatabase(t)
	table := testhelper.CreatePairwiseTable(t, connString)
	sink := openSink(t, connString)
	ctx := context.Background()

	dup := uuid.NewString()
	require.NoError(t, sink.Insert(ctx, table, []pairload.Record{{ID: dup, Prompt: "first"}}))

	err := sink.Insert(ctx, table, []pairload.Record{
		{ID: uuid.NewString(), Prompt: "second"},
		{ID: dup, Prompt: "duplicate"},
	})
	require.Error(t, err)
	assert.Equal(t, 1, testhelper.CountRows(t, connString, table))
}

func TestSink_UnknownTable(t *testing.T) {
	connString := testhelper.RequireDatabase(t)
	sink := openSink(t, connString)

	err := sink.Insert(context.Background(), "no-such-table", []pairload.Record{{ID: uuid.NewString(), Prompt: "p"}})
	assert.Error(t, err)
}
