package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client speaks the hosted data service's REST dialect (PostgREST
// conventions): one resource path per table, equality filters in the query
// string, JSON bodies.
//
//	POST   /{table}              insert
//	PATCH  /{table}?id=eq.{id}   partial update
//	DELETE /{table}?id=eq.{id}   delete
//
// Client implements Service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the root of the REST endpoint, e.g.
	// "https://project.example.co/rest/v1".
	BaseURL string

	// APIKey is sent as both the apikey header and the bearer token.
	APIKey string

	// Timeout bounds each request. Zero means 10 seconds.
	Timeout time.Duration

	// HTTPClient overrides the underlying client (tests). When set,
	// Timeout is ignored.
	HTTPClient *http.Client

	// Logger receives one event per request outcome.
	Logger zerolog.Logger
}

// NewClient creates a REST client for the data service.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    hc,
		log:     opts.Logger,
	}, nil
}

// Insert implements Service.
func (c *Client) Insert(ctx context.Context, table string, row map[string]any) error {
	return c.do(ctx, http.MethodPost, table, nil, row)
}

// Update implements Service.
func (c *Client) Update(ctx context.Context, table string, id any, changes map[string]any) error {
	return c.do(ctx, http.MethodPatch, table, id, changes)
}

// Delete implements Service.
func (c *Client) Delete(ctx context.Context, table string, id any) error {
	return c.do(ctx, http.MethodDelete, table, id, nil)
}

// do builds, sends, and classifies one request. A nil return means the
// service acknowledged the write.
func (c *Client) do(ctx context.Context, method, table string, matchID any, body map[string]any) error {
	u := c.baseURL + "/" + url.PathEscape(table)
	if matchID != nil {
		q := url.Values{}
		q.Set("id", "eq."+fmt.Sprint(matchID))
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			// Marshal failure is a payload defect, never retryable.
			return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("encode payload: %v", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("build request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Str("method", method).Str("table", table).Err(err).Msg("remote unreachable")
		return NewUnreachableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Debug().Str("method", method).Str("table", table).Int("status", resp.StatusCode).Msg("remote write applied")
		return nil
	}

	rerr := decodeError(resp)
	c.log.Warn().Str("method", method).Str("table", table).
		Int("status", rerr.Status).Str("code", rerr.Code).
		Bool("transient", rerr.Transient()).Msg("remote write rejected")
	return rerr
}

// decodeError extracts the service's error body, tolerating non-JSON
// responses from proxies and load balancers.
func decodeError(resp *http.Response) *Error {
	rerr := &Error{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		rerr.Message = resp.Status
		return rerr
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		rerr.Message = strings.TrimSpace(string(raw))
		return rerr
	}

	rerr.Code = body.Code
	rerr.Message = body.Message
	if rerr.Message == "" {
		rerr.Message = resp.Status
	}
	return rerr
}
