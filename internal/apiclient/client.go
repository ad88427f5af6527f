// Package apiclient talks to the campaign backend REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/session"
)

// Client is safe for concurrent use as long as its Store is.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session session.Store
	Logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, store session.Store, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Session: store,
		Logger:  logger.Named("apiclient"),
	}
}

// WithSession returns a shallow copy bound to another session.
func (c *Client) WithSession(store session.Store) *Client {
	cp := *c
	cp.Session = store
	return &cp
}

// call is a single request description.
type call struct {
	method   string
	path     string
	body     any
	fallback string
	// needData makes an empty data field a malformed response
	needData bool
}

// do sends one request and decodes the envelope payload into out.
// All 401 handling lives here.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	token := c.Session.Token()
	if token == "" {
		c.Logger.Warn("no session token, refusing request", zap.String("path", cl.path))
		return appErrors.NewAuthExpired()
	}

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", cl.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.BaseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", cl.path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	c.Logger.Debug("backend call",
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.Session.Clear(); err != nil {
			c.Logger.Error("failed to clear session", zap.Error(err))
		}
		c.Logger.Info("session expired", zap.String("path", cl.path))
		return appErrors.NewAuthExpired()
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", cl.path, err)
	}

	var env model.Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 300 {
				return &appErrors.APIError{Status: resp.StatusCode, Message: cl.fallback}
			}
			return &appErrors.ErrMalformedResponse{Endpoint: cl.path, Reason: "body is not a JSON envelope"}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &appErrors.APIError{Status: resp.StatusCode, Message: messageOr(env.Message, cl.fallback)}
	}
	if env.Success != nil && !*env.Success {
		return &appErrors.APIError{Status: resp.StatusCode, Message: messageOr(env.Message, cl.fallback)}
	}

	if out == nil {
		return nil
	}
	if !env.HasData() {
		if cl.needData {
			return &appErrors.ErrMalformedResponse{Endpoint: cl.path, Reason: "missing data"}
		}
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &appErrors.ErrMalformedResponse{Endpoint: cl.path, Reason: err.Error()}
	}
	return nil
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
