package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"storage-browser/contract"
	"storage-browser/errors"
)

// Markers the object store puts in the 400/403 body of an expired signed URL.
var expiryMarkers = []string{"ExpiredToken", "Request has expired", "expired"}

type RangeFetcher struct {
	client *http.Client
	log    *slog.Logger
}

func NewRangeFetcher(client *http.Client, log *slog.Logger) *RangeFetcher {
	return &RangeFetcher{client: client, log: log}
}

// Fetch opens the object at url from offset. When the server ignores the
// Range header the result starts at 0 and the caller must restart.
func (f *RangeFetcher) Fetch(ctx context.Context, url string, offset int64) (contract.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return contract.FetchResult{}, fmt.Errorf("building download request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return contract.FetchResult{}, fmt.Errorf("downloading: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		return contract.FetchResult{
			Body:      resp.Body,
			Offset:    offset,
			TotalSize: totalFromContentRange(resp.Header.Get("Content-Range")),
		}, nil
	case http.StatusOK:
		if offset > 0 {
			f.log.Info("Server ignored range request, restarting download", "offset", offset)
		}
		return contract.FetchResult{Body: resp.Body, Offset: 0, TotalSize: resp.ContentLength}, nil
	case http.StatusRequestedRangeNotSatisfiable:
		// nothing left after offset
		resp.Body.Close()
		return contract.FetchResult{Body: io.NopCloser(strings.NewReader("")), Offset: offset, TotalSize: offset}, nil
	}

	defer resp.Body.Close()
	body := snippet(resp.Body)
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusForbidden:
		for _, marker := range expiryMarkers {
			if strings.Contains(body, marker) {
				return contract.FetchResult{}, fmt.Errorf("%w: %s", errors.ErrURLExpired, body)
			}
		}
	case http.StatusNotFound:
		return contract.FetchResult{}, fmt.Errorf("%w: %s", errors.ErrObjectMissing, body)
	}
	return contract.FetchResult{}, fmt.Errorf("%w: download answered %d: %s", errors.ErrUnexpectedStatus, resp.StatusCode, body)
}

// totalFromContentRange reads "bytes a-b/total"; -1 when the total is unknown.
func totalFromContentRange(v string) int64 {
	i := strings.LastIndexByte(v, '/')
	if i < 0 {
		return -1
	}
	total, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return -1
	}
	return total
}
