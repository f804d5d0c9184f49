package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dheerajdev/folio/engagement"
)

// NetworkError reports a failed engagement request. StatusCode is zero when
// no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client talks to the engagement API of a folio site over HTTP. It keeps
// the session cookie between calls so per-session counts follow the client.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the site at baseURL (for example
// "https://dheeraj.dev"). When httpClient is nil a client with a cookie jar
// and a 10s timeout is used.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar, Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

func (c *Client) contentURL(slug string, parts ...string) string {
	u := c.baseURL + "/api/content/" + url.PathEscape(slug)
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

// Detail fetches the aggregate of slug.
func (c *Client) Detail(ctx context.Context, slug string) (*engagement.ContentDetail, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentURL(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}
	response, err := c.http.Do(request)
	if err != nil {
		return nil, &NetworkError{Op: "detail", Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &NetworkError{Op: "detail", StatusCode: response.StatusCode, Message: readErrorMessage(response)}
	}
	var detail engagement.ContentDetail
	if err := json.NewDecoder(response.Body).Decode(&detail); err != nil {
		return nil, &NetworkError{Op: "detail", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &detail, nil
}

// RecordView posts a view of slug.
func (c *Client) RecordView(ctx context.Context, slug string, req engagement.ViewRequest) error {
	return c.post(ctx, "view", c.contentURL(slug, "views"), req)
}

// RecordShare posts a share of slug.
func (c *Client) RecordShare(ctx context.Context, slug string, req engagement.ShareRequest) error {
	return c.post(ctx, "share", c.contentURL(slug, "shares"), req)
}

// RecordReaction posts a batch of reactions to slug.
func (c *Client) RecordReaction(ctx context.Context, slug string, req engagement.ReactionRequest) error {
	return c.post(ctx, "reaction", c.contentURL(slug, "reactions"), req)
}

func (c *Client) post(ctx context.Context, op, target string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusNoContent && response.StatusCode != http.StatusOK {
		return &NetworkError{Op: op, StatusCode: response.StatusCode, Message: readErrorMessage(response)}
	}
	return nil
}

func readErrorMessage(response *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(response.Body, 4096))
	if err != nil || len(data) == 0 {
		return http.StatusText(response.StatusCode)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
