package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storage-browser/domain"
	"storage-browser/errors"
)

// Client implements contract.ObjectStore by posting every call to the relay.
// It never retries: retry policy belongs to the transfer managers.
type Client struct {
	endpoint   string
	auth       json.RawMessage
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(endpoint string, auth json.RawMessage, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{endpoint: endpoint, auth: auth, httpClient: httpClient, log: log}
}

func (c *Client) CreateResumableUpload(ctx context.Context, obj domain.ObjectRef, meta domain.UploadMetadata) (string, error) {
	var uri string
	err := c.call(ctx, obj.Bucket, obj.Name, MethodCreateResumableUpload, &uri, meta)
	return uri, err
}

func (c *Client) SignedURL(ctx context.Context, obj domain.ObjectRef, action domain.SignedURLAction, expiresAt time.Time) (string, error) {
	var url string
	err := c.call(ctx, obj.Bucket, obj.Name, MethodGetSignedURL, &url, string(action), expiresAt.UnixMilli())
	return url, err
}

func (c *Client) Metadata(ctx context.Context, obj domain.ObjectRef) (domain.ObjectMetadata, error) {
	var meta domain.ObjectMetadata
	err := c.call(ctx, obj.Bucket, obj.Name, MethodGetMetadata, &meta)
	return meta, err
}

func (c *Client) Delete(ctx context.Context, obj domain.ObjectRef) error {
	return c.call(ctx, obj.Bucket, obj.Name, MethodDelete, nil)
}

func (c *Client) Exists(ctx context.Context, obj domain.ObjectRef) (bool, error) {
	var exists bool
	err := c.call(ctx, obj.Bucket, obj.Name, MethodExists, &exists)
	return exists, err
}

func (c *Client) Move(ctx context.Context, obj domain.ObjectRef, destination string) error {
	return c.call(ctx, obj.Bucket, obj.Name, MethodMove, nil, destination)
}

func (c *Client) List(ctx context.Context, bucket, prefix string) ([]domain.ObjectMetadata, error) {
	var objects []domain.ObjectMetadata
	err := c.call(ctx, bucket, "", MethodGetFiles, &objects, prefix)
	return objects, err
}

func (c *Client) call(ctx context.Context, bucket, file, method string, out any, args ...any) error {
	rawArgs := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("encoding %s argument: %w", method, err)
		}
		rawArgs = append(rawArgs, raw)
	}

	body, err := json.Marshal(Request{Auth: c.auth, Bucket: bucket, File: file, Method: method, Args: rawArgs})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", errors.ErrProxyCall, method, err)
	}
	defer resp.Body.Close()

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %s: http %d with unreadable body: %v", errors.ErrProxyCall, method, resp.StatusCode, err)
	}
	if envelope.Status != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", errors.ErrProxyCall, method, envelope.Message)
	}

	c.log.Debug("Proxy call done", "method", method, "bucket", bucket, "file", file)
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %s: decoding result: %v", errors.ErrProxyCall, method, err)
	}
	return nil
}
