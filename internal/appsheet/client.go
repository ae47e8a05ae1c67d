// Package appsheet implements the client for the AppSheet table API, the
// remote collaborator that serves the dispatch ledger.
package appsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/khovp/giaokho/internal/shared"
)

// Row is one loosely-typed record as returned by the table API. Values may be
// strings or numbers depending on how the sheet column is typed.
type Row map[string]any

// Config identifies the application and table to query.
type Config struct {
	Region    string
	AppID     string
	AccessKey string
	Table     string
	Timeout   time.Duration
}

// Client issues Find actions against one AppSheet table.
type Client struct {
	baseURL    string
	accessKey  string
	table      string
	httpClient *http.Client
}

// NewClient constructs a client for the configured table.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	region := cfg.Region
	if region == "" {
		region = "www"
	}
	return &Client{
		baseURL:    fmt.Sprintf("https://%s.appsheet.com/api/v2/apps/%s", region, cfg.AppID),
		accessKey:  cfg.AccessKey,
		table:      cfg.Table,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(baseURL, accessKey, table string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, accessKey: accessKey, table: table, httpClient: httpClient}
}

type findRequest struct {
	Action     string         `json:"Action"`
	Properties map[string]any `json:"Properties"`
	Selector   string         `json:"Selector"`
}

// FetchAll runs one Find action returning every row of the table. A payload
// that is not a JSON array fails with shared.ErrDataFormat; transport and
// HTTP-status failures wrap shared.ErrFeedUnavailable.
func (c *Client) FetchAll(ctx context.Context) ([]Row, error) {
	payload, err := json.Marshal(findRequest{
		Action:     "Find",
		Properties: map[string]any{},
		Selector:   fmt.Sprintf("Filter(%s, true)", c.table),
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/tables/%s/Action", c.baseURL, c.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("ApplicationAccessKey", c.accessKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", shared.ErrFeedUnavailable, c.table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: fetch %s: status %d: %s", shared.ErrFeedUnavailable, c.table, resp.StatusCode, string(data))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: read body: %v", shared.ErrFeedUnavailable, c.table, err)
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrDataFormat, firstBytes(body, 120))
	}
	return rows, nil
}

// String coerces a loosely-typed cell into its string form, empty when absent.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func firstBytes(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
