// Package transport speaks HTTP to the object store directly: range PUTs to
// resumable upload sessions and ranged GETs on signed URLs.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storage-browser/contract"
	"storage-browser/errors"
)

// StatusResumeIncomplete is what the store answers to every non-final chunk.
const StatusResumeIncomplete = 308

// NewHTTPClient returns a client that never follows redirects: a 308 from a
// resumable session is an acknowledgement, not a redirect.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type SessionUploader struct {
	client *http.Client
	log    *slog.Logger
}

func NewSessionUploader(client *http.Client, log *slog.Logger) *SessionUploader {
	return &SessionUploader{client: client, log: log}
}

// ContentRange formats the Content-Range header of a chunk. An empty object
// is sent as a single "bytes */0" request.
func ContentRange(c contract.ChunkRange) string {
	if c.Total == 0 {
		return "bytes */0"
	}
	return fmt.Sprintf("bytes %d-%d/%d", c.Start, c.End, c.Total)
}

// SendChunk PUTs one chunk. Intermediate chunks are acknowledged with 308,
// the final one with 200 or 201.
func (u *SessionUploader) SendChunk(ctx context.Context, sessionURI string, c contract.ChunkRange) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURI, bytes.NewReader(c.Body))
	if err != nil {
		return fmt.Errorf("building chunk request: %w", err)
	}
	req.ContentLength = int64(len(c.Body))
	req.Header.Set("Content-Range", ContentRange(c))

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending chunk %s: %w", ContentRange(c), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, StatusResumeIncomplete:
		u.log.Debug("Chunk acknowledged",
			"range", ContentRange(c), "status", resp.StatusCode, "took", time.Since(start))
		return nil
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: session answered %d", errors.ErrSessionExpired, resp.StatusCode)
	default:
		return fmt.Errorf("%w: chunk %s answered %d: %s",
			errors.ErrUnexpectedStatus, ContentRange(c), resp.StatusCode, snippet(resp.Body))
	}
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(bytes.TrimSpace(b))
}
