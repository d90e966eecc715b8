package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/domain/transfer"
	"storage-browser/errors"
	"storage-browser/mocks"
)

type downloadHarness struct {
	store   *DownloadStore
	objects *mocks.MockObjectStore
	fetcher *mocks.MockObjectFetcher
	repo    contract.TaskRepository
}

func newDownloadHarness(t *testing.T, cfg DownloadConfig) downloadHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := downloadHarness{
		objects: mocks.NewMockObjectStore(ctrl),
		fetcher: mocks.NewMockObjectFetcher(ctrl),
		repo:    newTestRepo(t),
	}
	if cfg.FreeSpace == nil {
		cfg.FreeSpace = func(string) (uint64, error) { return 1 << 40, nil }
	}
	h.store = NewDownloadStore(cfg, h.objects, h.fetcher, h.repo, logs.GetLoggerFromLevel(slog.LevelDebug))
	t.Cleanup(h.store.Close)
	return h
}

func downloadRequest(dest string, size int64) transfer.DownloadRequest {
	return transfer.DownloadRequest{
		SessionID:  "s1",
		Bucket:     "bucket",
		ObjectName: "s1/1700000000000-abc.txt",
		SourcePath: "sessions/s1/mount/docs/hello.txt",
		File:       transfer.File{Name: "hello.txt", Size: size, Path: dest},
	}
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

func TestDownload_StreamsToFile(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "nested", "hello.txt")
	ctx := context.Background()

	ref := domain.ObjectRef{Bucket: "bucket", Name: "s1/1700000000000-abc.txt"}
	h.objects.EXPECT().SignedURL(gomock.Any(), ref, domain.SignedURLRead, gomock.Any()).Return("https://signed/1", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/1", int64(0)).
		Return(contract.FetchResult{Body: body("hello world"), Offset: 0, TotalSize: 11}, nil)

	task, err := h.store.Enqueue(downloadRequest(dest, 11))
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, task.ID))

	got, err := h.store.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusCompleted, got.Status)
	req.Equal(int64(11), got.TransferredBytes)
	req.Equal("https://signed/1", got.SignedURL, "the signed url is cached on the task")

	content, err := os.ReadFile(dest)
	req.NoError(err)
	req.Equal("hello world", string(content))
}

func TestDownload_UnknownSizeTakesStreamedCount(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	ctx := context.Background()

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/2", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/2", int64(0)).
		Return(contract.FetchResult{Body: body("abc"), TotalSize: -1}, nil)

	task, err := h.store.Enqueue(downloadRequest(dest, 0))
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, task.ID))

	got, err := h.store.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusCompleted, got.Status)
	req.Equal(int64(3), got.TransferredBytes)
	req.Equal(int64(3), got.File.Size)
}

func TestDownload_ResumesWithRange(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newDownloadHarness(t, DownloadConfig{Now: func() time.Time { return now }})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	// a previous run wrote a few bytes past its last recorded offset
	req.NoError(os.WriteFile(dest, []byte("hello wo"), 0o644))
	ctx := context.Background()

	req.NoError(h.repo.Save(transfer.Task{
		ID: "d1", Kind: transfer.KindDownload, SessionID: "s1", Bucket: "bucket",
		ObjectName: "s1/o.txt", Status: transfer.StatusDownloading, TransferredBytes: 5, Seq: 1,
		File:      transfer.File{Name: "hello.txt", Size: 11, Path: dest},
		SignedURL: "https://signed/cached", SignedURLExpiresAt: now.Add(time.Minute),
	}))
	req.NoError(h.store.Load(ctx))

	loaded, err := h.store.Get("d1")
	req.NoError(err)
	req.Equal(transfer.StatusPaused, loaded.Status)

	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/cached", int64(5)).
		Return(contract.FetchResult{Body: body(" world"), Offset: 5, TotalSize: 11}, nil)

	_, err = h.store.Resume("d1")
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, "d1"))

	got, err := h.store.Get("d1")
	req.NoError(err)
	req.Equal(transfer.StatusCompleted, got.Status)
	content, err := os.ReadFile(dest)
	req.NoError(err)
	req.Equal("hello world", string(content))
}

func TestDownload_ResumeRebasesOnShorterLocalFile(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		onDisk      *string
		fetchOffset int64
		body        string
	}{
		{name: "partial file deleted", onDisk: nil, fetchOffset: 0, body: "hello world"},
		{name: "partial file shortened", onDisk: lo.ToPtr("hel"), fetchOffset: 3, body: "lo world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			h := newDownloadHarness(t, DownloadConfig{Now: func() time.Time { return now }})
			dest := filepath.Join(t.TempDir(), "hello.txt")
			if tt.onDisk != nil {
				req.NoError(os.WriteFile(dest, []byte(*tt.onDisk), 0o644))
			}
			ctx := context.Background()

			req.NoError(h.repo.Save(transfer.Task{
				ID: "d1", Kind: transfer.KindDownload, SessionID: "s1", Bucket: "bucket",
				ObjectName: "s1/o.txt", Status: transfer.StatusPaused, TransferredBytes: 5, Seq: 1,
				File:      transfer.File{Name: "hello.txt", Size: 11, Path: dest},
				SignedURL: "https://signed/cached", SignedURLExpiresAt: now.Add(time.Minute),
			}))
			req.NoError(h.store.Load(ctx))

			h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/cached", tt.fetchOffset).
				Return(contract.FetchResult{Body: body(tt.body), Offset: tt.fetchOffset, TotalSize: 11}, nil)

			_, err := h.store.Resume("d1")
			req.NoError(err)
			h.store.Schedule(ctx)
			req.NoError(h.store.Wait(ctx, "d1"))

			got, err := h.store.Get("d1")
			req.NoError(err)
			req.Equal(transfer.StatusCompleted, got.Status)
			req.Equal(int64(11), got.TransferredBytes)
			content, err := os.ReadFile(dest)
			req.NoError(err)
			req.Equal("hello world", string(content))
		})
	}
}

func TestDownload_ShortStreamFails(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	ctx := context.Background()

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/5", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/5", int64(0)).
		Return(contract.FetchResult{Body: body("hel"), TotalSize: 11}, nil)

	task, err := h.store.Enqueue(downloadRequest(dest, 11))
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, task.ID))

	got, err := h.store.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusFailed, got.Status)
	req.Equal(int64(3), got.TransferredBytes)
	req.Contains(got.Error, errors.ErrIncompleteStream.Error())
}

func TestDownload_ServerIgnoringRangeRestarts(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	req.NoError(os.WriteFile(dest, []byte("HELLO"), 0o644))
	ctx := context.Background()

	req.NoError(h.repo.Save(transfer.Task{
		ID: "d1", Kind: transfer.KindDownload, SessionID: "s1", Bucket: "bucket",
		ObjectName: "s1/o.txt", Status: transfer.StatusPending, TransferredBytes: 5, Seq: 1,
		File:      transfer.File{Name: "hello.txt", Size: 11, Path: dest},
		SignedURL: "https://signed/cached",
	}))
	req.NoError(h.store.Load(ctx))

	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/cached", int64(5)).
		Return(contract.FetchResult{Body: body("hello world"), Offset: 0, TotalSize: 11}, nil)

	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, "d1"))

	content, err := os.ReadFile(dest)
	req.NoError(err)
	req.Equal("hello world", string(content))
}

func TestDownload_ExpiredCachedURL(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := newDownloadHarness(t, DownloadConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	req.NoError(h.repo.Save(transfer.Task{
		ID: "d1", Kind: transfer.KindDownload, SessionID: "s1", Bucket: "bucket",
		ObjectName: "s1/o.txt", Status: transfer.StatusPending, Seq: 1,
		File:      transfer.File{Name: "o.txt", Size: 11, Path: filepath.Join(t.TempDir(), "o.txt")},
		SignedURL: "https://signed/old", SignedURLExpiresAt: now.Add(-time.Second),
	}))
	req.NoError(h.store.Load(ctx))

	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, "d1"))

	got, err := h.store.Get("d1")
	req.NoError(err)
	req.Equal(transfer.StatusExpired, got.Status)
	req.NotEmpty(got.Error)

	// a retry drops the stale url and fetches a new one
	retried, err := h.store.Retry("d1")
	req.NoError(err)
	req.Empty(retried.SignedURL)
}

func TestDownload_RemoteExpiryDuringFetch(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	ctx := context.Background()

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/3", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/3", int64(0)).Return(contract.FetchResult{}, errors.ErrURLExpired)

	task, err := h.store.Enqueue(downloadRequest(filepath.Join(t.TempDir(), "x"), 11))
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, task.ID))

	got, err := h.store.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusExpired, got.Status)
}

func TestDownload_NotEnoughFreeSpace(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{FreeSpace: func(string) (uint64, error) { return 10, nil }})
	ctx := context.Background()

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/4", nil)

	task, err := h.store.Enqueue(downloadRequest(filepath.Join(t.TempDir(), "big.bin"), 11))
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, task.ID))

	got, err := h.store.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusFailed, got.Status)
	req.Contains(got.Error, errors.ErrInsufficientSpace.Error())
}

// stallingBody returns its data then blocks until ctx is done.
type stallingBody struct {
	ctx  context.Context
	data []byte
	sent chan struct{}
}

func (b *stallingBody) Read(p []byte) (int, error) {
	if len(b.data) > 0 {
		n := copy(p, b.data)
		b.data = b.data[n:]
		return n, nil
	}
	select {
	case b.sent <- struct{}{}:
	default:
	}
	<-b.ctx.Done()
	return 0, b.ctx.Err()
}

func (b *stallingBody) Close() error { return nil }

func TestDownload_ShutdownKeepsBytesAndPauses(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sent := make(chan struct{}, 1)

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/5", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/5", int64(0)).
		DoAndReturn(func(fetchCtx context.Context, _ string, _ int64) (contract.FetchResult, error) {
			return contract.FetchResult{
				Body:      &stallingBody{ctx: fetchCtx, data: []byte("hello"), sent: sent},
				TotalSize: 11,
			}, nil
		})

	task, err := h.store.Enqueue(downloadRequest(filepath.Join(t.TempDir(), "hello.txt"), 11))
	req.NoError(err)
	h.store.Schedule(ctx)
	<-sent
	cancel()
	req.NoError(h.store.Wait(context.Background(), task.ID))

	got, err := h.store.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusPaused, got.Status, "an interrupted stream is resumable, not failed")
	req.Equal(int64(5), got.TransferredBytes)
	req.Empty(got.Error)
}

func TestDownload_RemoveDiscardsPartialFile(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	req.NoError(os.WriteFile(dest, []byte("hello"), 0o644))

	req.NoError(h.repo.Save(transfer.Task{
		ID: "d1", Kind: transfer.KindDownload, SessionID: "s1", Bucket: "bucket",
		ObjectName: "s1/o.txt", Status: transfer.StatusPaused, TransferredBytes: 5, Seq: 1,
		File: transfer.File{Name: "hello.txt", Size: 11, Path: dest},
	}))
	req.NoError(h.store.Load(context.Background()))

	req.NoError(h.store.Remove("d1"))
	_, err := os.Stat(dest)
	req.ErrorIs(err, os.ErrNotExist)
}

func TestDownload_RemoveWhileStreamingDiscardsPartialFile(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	sent := make(chan struct{}, 1)

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/6", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/6", int64(0)).
		DoAndReturn(func(fetchCtx context.Context, _ string, _ int64) (contract.FetchResult, error) {
			return contract.FetchResult{
				Body:      &stallingBody{ctx: fetchCtx, data: []byte("hello"), sent: sent},
				TotalSize: 11,
			}, nil
		})

	task, err := h.store.Enqueue(downloadRequest(dest, 11))
	req.NoError(err)
	h.store.Schedule(context.Background())
	<-sent

	req.NoError(h.store.Remove(task.ID))
	h.store.Close()

	_, err = os.Stat(dest)
	req.ErrorIs(err, os.ErrNotExist)
	req.Empty(h.store.List())
}

func TestDownload_ClearCompletedKeepsFile(t *testing.T) {
	req := require.New(t)
	h := newDownloadHarness(t, DownloadConfig{})
	dest := filepath.Join(t.TempDir(), "hello.txt")
	ctx := context.Background()

	h.objects.EXPECT().SignedURL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://signed/7", nil)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "https://signed/7", int64(0)).
		Return(contract.FetchResult{Body: body("hello world"), TotalSize: 11}, nil)

	task, err := h.store.Enqueue(downloadRequest(dest, 11))
	req.NoError(err)
	h.store.Schedule(ctx)
	req.NoError(h.store.Wait(ctx, task.ID))

	req.Equal(1, h.store.ClearCompleted())
	content, err := os.ReadFile(dest)
	req.NoError(err)
	req.Equal("hello world", string(content))
}
