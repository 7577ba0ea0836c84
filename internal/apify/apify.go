package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/metrics"
)

const (
	defaultBaseURL   = "https://api.apify.com"
	defaultPageSize  = 1000
	maxWaitForFinish = 60 * time.Second
)

const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusTimingOut = "TIMING-OUT"
	StatusTimedOut  = "TIMED-OUT"
	StatusAborting  = "ABORTING"
	StatusAborted   = "ABORTED"
)

// Item is one record of an actor's output dataset. Its shape belongs to the
// actor and is passed through untouched; numbers decode as json.Number.
type Item map[string]any

type Run struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	StatusMessage    string `json:"statusMessage,omitempty"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Terminal reports whether the run has stopped and will not change status again.
func (r Run) Terminal() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusAborted:
		return true
	}
	return false
}

type Config struct {
	Token         string
	BaseURL       string
	WaitForFinish time.Duration
	PageSize      int
	HTTPClient    *http.Client
}

type Client struct {
	token    string
	baseURL  string
	wait     time.Duration
	pageSize int
	client   *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	wait := cfg.WaitForFinish
	if wait <= 0 || wait > maxWaitForFinish {
		wait = maxWaitForFinish
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: wait + 30*time.Second}
	}
	return &Client{
		token:    cfg.Token,
		baseURL:  baseURL,
		wait:     wait,
		pageSize: pageSize,
		client:   httpClient,
	}
}

// Run starts the actor with the given input, blocks until the run reaches a
// terminal state and returns every item of its default dataset.
func (c *Client) Run(ctx context.Context, actorID string, input any) (items []Item, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOutbound("apify", start, err) }()

	run, err := c.StartRun(ctx, actorID, input)
	if err != nil {
		return nil, err
	}
	run, err = c.WaitForRun(ctx, run)
	if err != nil {
		return nil, err
	}
	if run.Status != StatusSucceeded {
		return nil, &RunError{RunID: run.ID, ActorID: actorID, Status: run.Status, Message: run.StatusMessage}
	}
	return c.DatasetItems(ctx, run.DefaultDatasetID)
}

func (c *Client) StartRun(ctx context.Context, actorID string, input any) (*Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode actor input: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?%s", c.baseURL, url.PathEscape(NormalizeActorID(actorID)), c.waitQuery().Encode())
	var envelope struct {
		Data Run `json:"data"`
	}
	if _, err := c.do(ctx, http.MethodPost, endpoint, body, &envelope); err != nil {
		return nil, fmt.Errorf("start actor %s: %w", actorID, err)
	}
	return &envelope.Data, nil
}

// WaitForRun polls the run until it is terminal. Each poll asks the API to
// hold the request open for up to the configured wait.
func (c *Client) WaitForRun(ctx context.Context, run *Run) (*Run, error) {
	current := run
	for !current.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?%s", c.baseURL, url.PathEscape(current.ID), c.waitQuery().Encode())
		var envelope struct {
			Data Run `json:"data"`
		}
		if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &envelope); err != nil {
			return nil, fmt.Errorf("poll run %s: %w", current.ID, err)
		}
		current = &envelope.Data
	}
	return current, nil
}

// DatasetItems reads every item the dataset currently holds, page by page.
// Items are requested unfiltered so a page is only short at the end of the
// dataset; the pagination total, when the API sends it, bounds the loop.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]Item, error) {
	if strings.TrimSpace(datasetID) == "" {
		return nil, errors.New("run has no default dataset")
	}
	items := []Item{}
	for offset := 0; ; offset += c.pageSize {
		query := url.Values{}
		query.Set("format", "json")
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(c.pageSize))
		endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?%s", c.baseURL, url.PathEscape(datasetID), query.Encode())

		var page []Item
		header, err := c.do(ctx, http.MethodGet, endpoint, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("list dataset %s items: %w", datasetID, err)
		}
		items = append(items, page...)
		if total, ok := paginationTotal(header); ok {
			if offset+c.pageSize >= total {
				return items, nil
			}
			continue
		}
		if len(page) < c.pageSize {
			return items, nil
		}
	}
}

func paginationTotal(header http.Header) (int, bool) {
	raw := strings.TrimSpace(header.Get("X-Apify-Pagination-Total"))
	if raw == "" {
		return 0, false
	}
	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}

// NormalizeActorID converts the "user/actor" form into the "user~actor" form
// used in API paths.
func NormalizeActorID(actorID string) string {
	return strings.ReplaceAll(strings.TrimSpace(actorID), "/", "~")
}

func (c *Client) waitQuery() url.Values {
	query := url.Values{}
	query.Set("waitForFinish", strconv.Itoa(int(c.wait/time.Second)))
	return query
}

// do sends one API request and decodes the JSON answer into out. Numbers
// stay json.Number so dataset values keep their exact digits.
func (c *Client) do(ctx context.Context, method string, endpoint string, body []byte, out any) (http.Header, error) {
	if c.token == "" {
		return nil, errors.New("missing Apify API token")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, newAPIError(resp, raw)
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}
