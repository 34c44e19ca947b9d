// Package client is the HTTP capability the actors talk to the Conduit API
// through: four verbs over JSON, rooted at a base URL.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// TokenSource supplies the auth token sent with every request.
type TokenSource interface {
	Read() (string, bool)
}

type Client struct {
	http.Client
	// Addr is the API root, e.g. http://localhost:3333/api.
	Addr   string
	Tokens TokenSource
	Logger *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTokens sends the token from ts as "Authorization: Token <token>".
func WithTokens(ts TokenSource) Option {
	return func(c *Client) {
		c.Tokens = ts
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.Timeout = d
	}
}

// WithLogger logs requests at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.Logger = l
	}
}

// WithHTTPClient replaces the underlying transport settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.Client = *hc
	}
}

func New(addr string, opts ...Option) *Client {
	c := &Client{
		Addr:   strings.TrimRight(addr, "/"),
		Logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-2xx response. Errors holds the field errors of the body
// or, when the body has none, the status text.
type APIError struct {
	StatusCode int
	Errors     model.Errors
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), strings.ReplaceAll(e.Errors.String(), "\n", "; "))
}

// FieldErrors implements model.FieldErrorer.
func (e *APIError) FieldErrors() model.Errors {
	return e.Errors
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Del(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, out)
}

// Ping checks the server is up. It is served outside the API root.
func (c *Client) Ping() (string, error) {
	root := strings.TrimSuffix(c.Addr, "/api")
	req, err := http.NewRequest("GET", root+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		rd = bytes.NewReader(b)
	}

	url := c.Addr + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Tokens != nil {
		if token, ok := c.Tokens.Read(); ok && token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	start := time.Now()
	resp, err := c.Do(req)
	if err != nil {
		recordRequest(ctx, method, 0, time.Since(start))

		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	recordRequest(ctx, method, resp.StatusCode, time.Since(start))

	if c.Logger != nil {
		c.Logger.Debugw("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(ioutil.Discard, resp.Body)

		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Errors model.Errors `json:"errors"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && len(payload.Errors) > 0 {
		apiErr.Errors = payload.Errors
	} else {
		apiErr.Errors = model.Errors{"status": {http.StatusText(resp.StatusCode)}}
	}

	return apiErr
}
