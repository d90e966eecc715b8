package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"storage-browser/domain"
	"storage-browser/domain/entitypath"
	"storage-browser/errors"
)

// Client talks to the metadata API of a browsing session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient, log: log}
}

// List returns the direct children of a mount-relative folder.
func (c *Client) List(ctx context.Context, parent string) ([]domain.Record, error) {
	var records []domain.Record
	err := c.do(ctx, http.MethodGet, routeList+"?parent="+url.QueryEscape(parent), nil, &records)
	return records, err
}

// Children lists the folder an entity path points at.
func (c *Client) Children(ctx context.Context, p entitypath.EntityPath) ([]domain.Record, error) {
	return c.List(ctx, p.MountPath())
}

func (c *Client) Generate(ctx context.Context) (domain.GenerateReport, error) {
	var report domain.GenerateReport
	err := c.do(ctx, http.MethodPost, routeGenerate, nil, &report)
	return report, err
}

func (c *Client) Move(ctx context.Context, id, newPath string) (domain.Record, error) {
	var record domain.Record
	err := c.do(ctx, http.MethodPut, "/records/"+url.PathEscape(id)+"/path", domain.MoveRecordRequest{NewPath: newPath}, &record)
	return record, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", errors.ErrRecordNotFound, e.Message)
		}
		return fmt.Errorf("%w: %s %s: %d %s", errors.ErrUnexpectedStatus, method, path, resp.StatusCode, e.Message)
	}
	c.log.Debug("Metadata call done", "method", method, "path", path)
	return json.NewDecoder(resp.Body).Decode(out)
}
