package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"blogeditor/internal/logger"
	"blogeditor/internal/model"
	"blogeditor/internal/service"
)

const requestIDHeader = "X-Request-ID"

// APIError is a non-2xx response that is neither not-found nor a validation failure.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

type errorBody struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Client talks to the blog API over HTTP. It maps 404 to service.ErrNotFound and
// validation failures to service.ErrValidation so callers can tell them apart.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for baseURL. A zero timeout leaves deadlines to the caller's context.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	return &Client{
		base: u,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *Client) CreateDraft(ctx context.Context, fields model.DocumentFields) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/api/blogs/savedraft", fields, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) CreatePublished(ctx context.Context, fields model.DocumentFields) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/api/blogs/publish", fields, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) List(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := c.do(ctx, http.MethodGet, "/api/blogs", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodGet, "/api/blogs/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Promote returns the server's confirmation message.
func (c *Client) Promote(ctx context.Context, id string) (string, error) {
	var msg messageBody
	if err := c.do(ctx, http.MethodPost, "/api/blogs/"+url.PathEscape(id)+"/publish", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Delete returns the server's confirmation message.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var msg messageBody
	if err := c.do(ctx, http.MethodDelete, "/api/blogs/"+url.PathEscape(id), nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return decodeError(resp)
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return service.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest && eb.Error.Code == "VALIDATION_ERROR":
		return fmt.Errorf("%w: %s", service.ErrValidation, eb.Error.Message)
	}
	return &APIError{
		Status:    resp.StatusCode,
		Code:      eb.Error.Code,
		Message:   eb.Error.Message,
		RequestID: eb.RequestID,
	}
}
