package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// ErrUnavailable wraps transport failures such as refused connections or
// timeouts.
var ErrUnavailable = errors.New("query service unavailable")

// Error is a failure reported by the query service itself.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("query service error (status %d)", e.Status)
	}
	return fmt.Sprintf("query service error (status %d): %s", e.Status, e.Detail)
}

// Response is the answer of the query service.
type Response struct {
	Query       string `json:"query"`
	ResultsHTML string `json:"results_html"`
}

// QueryService answers a natural-language question with an HTML table.
type QueryService interface {
	Ask(ctx context.Context, question string) (*Response, error)
}

type askRequest struct {
	Query string `json:"query"`
}

type errorBody struct {
	Detail any `json:"detail"`
}

// Client calls the query service over HTTP.
type Client struct {
	http *resty.Client
	url  string
}

var _ QueryService = (*Client)(nil)

// NewClient creates a client posting to url, for example
// http://127.0.0.1:8000/ask.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "querychat/1.0")
	return &Client{http: c, url: url}
}

// Ask posts the question and decodes the answer. Service-side failures
// are returned as *Error, transport failures wrap ErrUnavailable.
func (c *Client) Ask(ctx context.Context, question string) (*Response, error) {
	var result Response
	var failure errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(askRequest{Query: question}).
		SetResult(&result).
		SetError(&failure).
		Post(c.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, &Error{Status: resp.StatusCode(), Detail: detailText(failure.Detail)}
	}
	return &result, nil
}

// detailText flattens the detail field, which may be a string or a list
// of validation errors.
func detailText(detail any) string {
	switch v := detail.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					parts = append(parts, msg)
					continue
				}
			}
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}
