package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pairload/internal/retry"
	"github.com/vvka-141/pairload/pkg/pairload"
)

// fakeServer serves /splits and /rows for one dataset with total rows.
type fakeServer struct {
	t          *testing.T
	total      int
	token      string
	failFirst  int32 // number of initial /rows requests answered with 503
	truncateAt int   // pages longer than this report truncated cells
	partial    bool
	rowsCalls  atomic.Int32

	mu      sync.Mutex
	lengths []int
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"The dataset does not exist, or is not accessible without authentication."}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/splits":
		assert.Equal(f.t, "SAA-Lab/LitBench-Test", r.URL.Query().Get("dataset"))
		fmt.Fprint(w, `{"splits":[
			{"dataset":"SAA-Lab/LitBench-Test","config":"default","split":"test"},
			{"dataset":"SAA-Lab/LitBench-Test","config":"default","split":"train"}]}`)
	case "/rows":
		n := f.rowsCalls.Add(1)
		if n <= f.failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":"busy"}`)
			return
		}
		q := r.URL.Query()
		assert.Equal(f.t, "default", q.Get("config"))
		assert.Equal(f.t, "train", q.Get("split"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		length, _ := strconv.Atoi(q.Get("length"))
		f.mu.Lock()
		f.lengths = append(f.lengths, length)
		f.mu.Unlock()

		type row struct {
			Index          int            `json:"row_idx"`
			Row            map[string]any `json:"row"`
			TruncatedCells []string       `json:"truncated_cells"`
		}
		var rows []row
		for i := offset; i < offset+length && i < f.total; i++ {
			var truncated []string
			if f.truncateAt > 0 && length > f.truncateAt {
				truncated = []string{"chosen_story"}
			}
			rows = append(rows, row{
				Index: i,
				Row: map[string]any{
					"prompt":           fmt.Sprintf("prompt %d", i),
					"chosen_story":     "Once...",
					"chosen_timestamp": 1700000000 + i,
					"chosen_upvotes":   nil,
				},
				TruncatedCells: truncated,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"features": []map[string]any{
				{"feature_idx": 0, "name": "prompt"},
				{"feature_idx": 1, "name": "chosen_story"},
				{"feature_idx": 2, "name": "chosen_timestamp"},
				{"feature_idx": 3, "name": "chosen_upvotes"},
			},
			"rows":           rows,
			"num_rows_total": f.total,
			"partial":        f.partial,
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeServer, cfg Config) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	cfg.HTTPClient = srv.Client()
	if cfg.Executor == nil {
		cfg.Executor = retry.NewExecutor(retry.NewHTTPErrorClassifier(),
			retry.NewExponentialBackoff(3, retry.WithInitialDelay(time.Millisecond), retry.WithJitter(0)))
	}
	return NewClient(cfg)
}

func TestClient_ResolveConfig(t *testing.T) {
	client := newTestClient(t, &fakeServer{}, Config{})

	config, err := client.ResolveConfig(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.NoError(t, err)
	assert.Equal(t, "default", config)
}

func TestClient_ResolveConfig_UnknownSplit(t *testing.T) {
	client := newTestClient(t, &fakeServer{}, Config{})

	_, err := client.ResolveConfig(context.Background(), "SAA-Lab/LitBench-Test", "validation")
	assert.True(t, errors.Is(err, ErrSplitNotFound))
}

func TestClient_FetchTable_Paginates(t *testing.T) {
	f := &fakeServer{total: 250}
	client := newTestClient(t, f, Config{})

	table, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.NoError(t, err)

	assert.Equal(t, []string{"prompt", "chosen_story", "chosen_timestamp", "chosen_upvotes"}, table.Columns)
	require.Len(t, table.Rows, 250)
	assert.Equal(t, int32(3), f.rowsCalls.Load())
	assert.NoError(t, table.Validate())

	for i, row := range table.Rows {
		assert.Equal(t, fmt.Sprintf("prompt %d", i), row[0], "rows keep source order")
	}
	assert.Equal(t, json.Number("1700000249"), table.Rows[249][2], "numbers keep their literal text")
	assert.Nil(t, table.Rows[0][3])
}

func TestClient_FetchTable_EmptySplit(t *testing.T) {
	client := newTestClient(t, &fakeServer{total: 0}, Config{})

	table, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestClient_FetchTable_RetriesTransientFailures(t *testing.T) {
	f := &fakeServer{total: 10, failFirst: 2}
	client := newTestClient(t, f, Config{})

	table, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 10)
	assert.Equal(t, int32(3), f.rowsCalls.Load())
}

func TestClient_FetchTable_ShrinksTruncatedPages(t *testing.T) {
	f := &fakeServer{total: 60, truncateAt: 25}
	client := newTestClient(t, f, Config{})

	table, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 60)
	// 100 -> 50 -> 25 accepted, then back to the full page size for the next offset.
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []int{100, 50, 25, 100, 50, 25, 100, 50, 25}, f.lengths)
}

func TestClient_FetchTable_RejectsPartialSplit(t *testing.T) {
	f := &fakeServer{total: 1, partial: true}
	client := newTestClient(t, f, Config{})

	table, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.Error(t, err)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrPartialSplit)
	assert.ErrorIs(t, err, pairload.ErrFetchFailed)
	assert.Equal(t, int32(1), f.rowsCalls.Load(), "partial pages are not retried")
}

func TestClient_FetchTable_GatedWithoutToken(t *testing.T) {
	f := &fakeServer{total: 5, token: "hf_secret"}
	client := newTestClient(t, f, Config{})

	_, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pairload.ErrDatasetAccess))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "not accessible without authentication")
}

func TestClient_FetchTable_GatedWithToken(t *testing.T) {
	f := &fakeServer{total: 5, token: "hf_secret"}
	client := newTestClient(t, f, Config{Token: "hf_secret"})

	table, err := client.FetchTable(context.Background(), "SAA-Lab/LitBench-Test", "train")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 5)
}
