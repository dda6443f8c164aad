// Package huggingface reads dataset splits through the Hugging Face
// datasets-server API and materializes them as pairload tables.
//
// Rows are fetched page by page from /rows. Pages whose cells the server
// truncated are re-requested with a smaller page size so every value is
// downloaded in full.
package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vvka-141/pairload/internal/logging"
	"github.com/vvka-141/pairload/internal/retry"
	"github.com/vvka-141/pairload/pkg/pairload"
)

const (
	// DefaultBaseURL is the public datasets-server endpoint.
	DefaultBaseURL = "https://datasets-server.huggingface.co"

	// MaxPageSize is the largest page /rows accepts.
	MaxPageSize = 100
)

var (
	// ErrSplitNotFound is returned when no config of the dataset has the split.
	ErrSplitNotFound = errors.New("split not found")

	// ErrTruncatedCells is returned when a single row is too large to be served untruncated.
	ErrTruncatedCells = errors.New("row cells truncated by server")

	// ErrPartialSplit is returned when the server only serves a prefix of the split.
	ErrPartialSplit = errors.New("split only partially available")
)

// Config configures the datasets-server client.
// Zero values are given defaults: DefaultBaseURL, MaxPageSize, a
// retrying executor and http.DefaultClient with DefaultHTTPTimeout.
type Config struct {
	BaseURL    string
	Token      string
	PageSize   int
	HTTPClient *http.Client
	Executor   *retry.Executor
	Logger     pairload.Logger
}

// Client fetches dataset rows. It implements pairload.DatasetSource.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	executor *retry.Executor
	logger   pairload.Logger
}

var _ pairload.DatasetSource = (*Client)(nil)

// NewClient constructs a Client from Config, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: pairload.DefaultHTTPTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNullLogger()
	}
	if cfg.Executor == nil {
		cfg.Executor = retry.NewExecutor(
			retry.NewHTTPErrorClassifier(),
			retry.NewExponentialBackoff(pairload.DefaultRetryMaxAttempts,
				retry.WithInitialDelay(pairload.DefaultRetryInitialDelay),
				retry.WithMaxDelay(pairload.DefaultRetryMaxDelay),
			),
		)
	}
	logger := cfg.Logger
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		http:     cfg.HTTPClient,
		executor: cfg.Executor.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("retrying request (attempt %d) in %s: %v", attempt+1, delay, err)
		}),
		logger: logger,
	}
}

// APIError is a non-2xx datasets-server response.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("datasets-server: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("datasets-server: HTTP %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus lets the retry classifier inspect the status.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Unwrap maps authentication failures to pairload.ErrDatasetAccess.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return pairload.ErrDatasetAccess
	}
	return nil
}

// Feature describes one dataset column.
type Feature struct {
	Index int    `json:"feature_idx"`
	Name  string `json:"name"`
}

// RowsPage is one /rows response.
type RowsPage struct {
	Features []Feature `json:"features"`
	Rows     []struct {
		Index          int                       `json:"row_idx"`
		Row            map[string]pairload.Value `json:"row"`
		TruncatedCells []string                  `json:"truncated_cells"`
	} `json:"rows"`
	NumRowsTotal int  `json:"num_rows_total"`
	Partial      bool `json:"partial"`
}

func (p *RowsPage) truncated() bool {
	for _, r := range p.Rows {
		if len(r.TruncatedCells) > 0 {
			return true
		}
	}
	return false
}

type splitsResponse struct {
	Splits []struct {
		Dataset string `json:"dataset"`
		Config  string `json:"config"`
		Split   string `json:"split"`
	} `json:"splits"`
}

// ResolveConfig returns the first dataset config that has split.
func (c *Client) ResolveConfig(ctx context.Context, dataset, split string) (string, error) {
	var resp splitsResponse
	if err := c.get(ctx, "/splits", url.Values{"dataset": {dataset}}, &resp); err != nil {
		return "", err
	}
	for _, s := range resp.Splits {
		if s.Split == split {
			return s.Config, nil
		}
	}
	return "", fmt.Errorf("%w: %q in dataset %q", ErrSplitNotFound, split, dataset)
}

// Rows fetches one page starting at offset.
func (c *Client) Rows(ctx context.Context, dataset, config, split string, offset, length int) (*RowsPage, error) {
	query := url.Values{
		"dataset": {dataset},
		"config":  {config},
		"split":   {split},
		"offset":  {fmt.Sprint(offset)},
		"length":  {fmt.Sprint(length)},
	}
	var page RowsPage
	if err := c.get(ctx, "/rows", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchTable downloads the whole split into memory.
func (c *Client) FetchTable(ctx context.Context, dataset, split string) (*pairload.Table, error) {
	config, err := c.ResolveConfig(ctx, dataset, split)
	if err != nil {
		return nil, err
	}
	c.logger.Verbose("resolved %s split %q to config %q", dataset, split, config)

	table := &pairload.Table{}
	offset, length := 0, c.pageSize
	for {
		page, err := c.Rows(ctx, dataset, config, split, offset, length)
		if err != nil {
			return nil, fmt.Errorf("rows at offset %d: %w", offset, err)
		}

		if page.truncated() {
			if length == 1 {
				return nil, fmt.Errorf("%w: row %d", ErrTruncatedCells, offset)
			}
			length = max(length/2, 1)
			c.logger.Verbose("page at offset %d truncated, retrying with %d rows", offset, length)
			continue
		}

		if page.Partial {
			return nil, fmt.Errorf("%w: %w: %s split %q at offset %d", pairload.ErrFetchFailed, ErrPartialSplit, dataset, split, offset)
		}

		if table.Columns == nil {
			table.Columns = columnNames(page.Features)
		}
		for _, r := range page.Rows {
			row := make([]pairload.Value, len(table.Columns))
			for i, col := range table.Columns {
				row[i] = r.Row[col]
			}
			table.Rows = append(table.Rows, row)
		}

		offset += len(page.Rows)
		c.logger.Verbose("fetched %d/%d rows", offset, page.NumRowsTotal)
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
		length = c.pageSize
	}

	if table.Columns == nil {
		table.Columns = []string{}
	}
	return table, nil
}

func columnNames(features []Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}
	return names
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	u := c.baseURL + path + "?" + query.Encode()
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		return c.getOnce(ctx, u, result)
	})
}

func (c *Client) getOnce(ctx context.Context, u string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("datasets-server: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("datasets-server: request failed: %w", err)
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = dec.Decode(apiErr)
		return apiErr
	}

	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("datasets-server: failed to decode response: %w", err)
	}
	return nil
}
