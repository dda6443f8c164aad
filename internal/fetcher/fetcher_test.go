package fetcher

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pairload/internal/logging"
	"github.com/vvka-141/pairload/pkg/pairload"
)

type mockSource struct {
	table      *pairload.Table
	err        error
	gotDataset string
	gotSplit   string
}

func (m *mockSource) FetchTable(_ context.Context, dataset, split string) (*pairload.Table, error) {
	m.gotDataset, m.gotSplit = dataset, split
	return m.table, m.err
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestService_Fetch_RenamesAndDropsColumns(t *testing.T) {
	source := &mockSource{table: &pairload.Table{
		Columns: []string{"prompt", "chosen_story", "rejected_story", "chosen_timestamp", "rejected_username"},
		Rows: [][]pairload.Value{
			{"write a story", "Once...", "Once...", json.Number("1700000000"), "someone"},
		},
	}}
	logger := logging.NewRecordingLogger()
	output := filepath.Join(t.TempDir(), "LitBench_Test.csv")

	result, err := NewService(source, logger).Fetch(context.Background(), Options{Output: output})
	require.NoError(t, err)

	assert.Equal(t, pairload.DefaultDataset, source.gotDataset)
	assert.Equal(t, pairload.DefaultSplit, source.gotSplit)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, 4, result.Columns)
	assert.Equal(t, []string{"rejected_username"}, result.Dropped)

	records := readCSV(t, output)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"prompt", "chosen", "rejected", "timestamp_chosen"}, records[0])
	assert.NotContains(t, records[0], "rejected_username")
	assert.Equal(t, []string{"write a story", "Once...", "Once...", "1700000000"}, records[1])

	info := logger.Messages("info")
	assert.Contains(t, info, "Dropping columns not in schema: [rejected_username]...")
	assert.Contains(t, info, "The CSV file contains 1 rows and 4 columns.")
}

func TestService_Fetch_SourceError(t *testing.T) {
	source := &mockSource{err: pairload.ErrDatasetAccess}
	output := filepath.Join(t.TempDir(), "out.csv")

	_, err := NewService(source, nil).Fetch(context.Background(), Options{Output: output})

	require.Error(t, err)
	assert.True(t, errors.Is(err, pairload.ErrFetchFailed))
	assert.True(t, errors.Is(err, pairload.ErrDatasetAccess))
	assert.NoFileExists(t, output)
}

func TestService_Fetch_MalformedTable(t *testing.T) {
	source := &mockSource{table: &pairload.Table{
		Columns: []string{"prompt", "chosen"},
		Rows:    [][]pairload.Value{{"only one cell"}},
	}}

	_, err := NewService(source, nil).Fetch(context.Background(), Options{Output: filepath.Join(t.TempDir(), "o.csv")})

	assert.True(t, errors.Is(err, pairload.ErrFetchFailed))
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{Split: "test"}.WithDefaults()

	assert.Equal(t, pairload.DefaultDataset, got.Dataset)
	assert.Equal(t, "test", got.Split)
	assert.Equal(t, pairload.DefaultFetchOutput, got.Output)
}
