package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/domain/checksum"
	"storage-browser/domain/transfer"
	"storage-browser/errors"
	"storage-browser/infrastructure/transport"
	"storage-browser/mocks"
)

type uploadHarness struct {
	manager *UploadManager
	store   *mocks.MockObjectStore
	sender  *mocks.MockChunkSender
	repo    contract.TaskRepository
}

func newUploadHarness(t *testing.T, chunkSize int64, now func() time.Time) uploadHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := uploadHarness{
		store:  mocks.NewMockObjectStore(ctrl),
		sender: mocks.NewMockChunkSender(ctrl),
		repo:   newTestRepo(t),
	}
	h.manager = NewUploadManager(UploadConfig{ChunkSize: chunkSize, Now: now},
		h.store, h.sender, h.repo, logs.GetLoggerFromLevel(slog.LevelDebug))
	t.Cleanup(h.manager.Close)
	return h
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func uploadRequest(path string, size int64) transfer.UploadRequest {
	return transfer.UploadRequest{
		SessionID:  "s1",
		Bucket:     "bucket",
		TargetPath: "sessions/s1/mount/docs",
		File:       transfer.File{Name: filepath.Base(path), Size: size, Path: path},
	}
}

func remoteCRC(t *testing.T, path string) string {
	t.Helper()
	digests, err := checksum.ComputeFile(context.Background(), path, nil)
	require.NoError(t, err)
	b64, err := checksum.HexToBase64(digests.CRC32C)
	require.NoError(t, err)
	return b64
}

type rangeRecorder struct {
	mu     sync.Mutex
	ranges []contract.ChunkRange
}

func (r *rangeRecorder) record(_ context.Context, _ string, c contract.ChunkRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges = append(r.ranges, contract.ChunkRange{Start: c.Start, End: c.End, Total: c.Total})
	return nil
}

func (r *rangeRecorder) headers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.ranges))
	for _, c := range r.ranges {
		out = append(out, transport.ContentRange(c))
	}
	return out
}

func TestUpload_TwentyFiveMiBInThreeChunks(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, DefaultChunkSize, nil)
	const size = 26214400
	path := writeFile(t, "video.mp4", make([]byte, size))
	rec := &rangeRecorder{}

	h.store.EXPECT().
		CreateResumableUpload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, obj domain.ObjectRef, meta domain.UploadMetadata) (string, error) {
			req.Equal("bucket", obj.Bucket)
			req.True(strings.HasPrefix(obj.Name, "s1/"))
			req.True(strings.HasSuffix(obj.Name, ".mp4"))
			req.Equal("video.mp4", meta.OriginalName)
			req.Equal("sessions/s1/mount/docs", meta.Path)
			req.Len(meta.CRC32C, 8)
			req.Len(meta.XXHash64, 16)
			return "https://session/1", nil
		})
	h.sender.EXPECT().SendChunk(gomock.Any(), "https://session/1", gomock.Any()).DoAndReturn(rec.record).Times(3)
	h.store.EXPECT().Metadata(gomock.Any(), gomock.Any()).Return(domain.ObjectMetadata{CRC32C: remoteCRC(t, path)}, nil)

	task, err := h.manager.Enqueue(uploadRequest(path, size))
	req.NoError(err)
	ctx := context.Background()
	h.manager.Schedule(ctx)
	req.NoError(h.manager.Wait(ctx, task.ID))

	req.Equal([]string{
		"bytes 0-10485759/26214400",
		"bytes 10485760-20971519/26214400",
		"bytes 20971520-26214399/26214400",
	}, rec.headers())

	done, err := h.manager.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusCompleted, done.Status)
	req.Equal(int64(size), done.TransferredBytes)
	req.Empty(done.Error)
}

func TestUpload_EmptyFileSendsSingleEmptyRange(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, 4, nil)
	path := writeFile(t, "empty.txt", nil)
	rec := &rangeRecorder{}

	h.store.EXPECT().CreateResumableUpload(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://session/e", nil)
	h.sender.EXPECT().SendChunk(gomock.Any(), "https://session/e", gomock.Any()).DoAndReturn(rec.record).Times(1)
	h.store.EXPECT().Metadata(gomock.Any(), gomock.Any()).Return(domain.ObjectMetadata{CRC32C: "AAAAAA=="}, nil)

	task, err := h.manager.Enqueue(uploadRequest(path, 0))
	req.NoError(err)
	h.manager.Schedule(context.Background())
	req.NoError(h.manager.Wait(context.Background(), task.ID))

	req.Equal([]string{"bytes */0"}, rec.headers())
	done, err := h.manager.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusCompleted, done.Status)
}

func TestUpload_ReportsHashingProgress(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, 4, nil)
	path := writeFile(t, "notes.txt", []byte("012345678"))
	ctx := context.Background()

	h.store.EXPECT().CreateResumableUpload(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://session/h", nil)
	h.sender.EXPECT().SendChunk(gomock.Any(), "https://session/h", gomock.Any()).Return(nil).Times(3)
	h.store.EXPECT().Metadata(gomock.Any(), gomock.Any()).Return(domain.ObjectMetadata{CRC32C: remoteCRC(t, path)}, nil)

	var mu sync.Mutex
	var hashed int64
	unsubscribe := h.manager.Subscribe(func(e Event) {
		if e.Task.Status != transfer.StatusCalculating {
			return
		}
		stats, err := h.manager.Progress(e.Task.ID)
		if err != nil {
			return
		}
		mu.Lock()
		hashed = max(hashed, stats.BytesDone)
		mu.Unlock()
	})
	defer unsubscribe()

	task, err := h.manager.Enqueue(uploadRequest(path, 9))
	req.NoError(err)
	h.manager.Schedule(ctx)
	req.NoError(h.manager.Wait(ctx, task.ID))

	mu.Lock()
	defer mu.Unlock()
	req.Equal(int64(9), hashed, "the whole file is reported hashed before the upload starts")
}

func TestUpload_ResumesFromLastAcknowledgedChunk(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, 4, nil)
	path := writeFile(t, "notes.txt", []byte("0123456789"))
	ctx := context.Background()

	var taskID string
	rec := &rangeRecorder{}
	h.store.EXPECT().CreateResumableUpload(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://session/r", nil).Times(1)

	first := h.sender.EXPECT().SendChunk(gomock.Any(), "https://session/r", gomock.Any()).DoAndReturn(rec.record)
	h.sender.EXPECT().SendChunk(gomock.Any(), "https://session/r", gomock.Any()).
		DoAndReturn(func(ctx context.Context, uri string, c contract.ChunkRange) error {
			// the user pauses while the second chunk is on the wire
			_, err := h.manager.Pause(taskID)
			req.NoError(err)
			return rec.record(ctx, uri, c)
		}).After(first)

	task, err := h.manager.Enqueue(uploadRequest(path, 10))
	req.NoError(err)
	taskID = task.ID
	h.manager.Schedule(ctx)
	req.NoError(h.manager.Wait(ctx, task.ID))

	paused, err := h.manager.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusPaused, paused.Status)
	req.Equal(int64(4), paused.TransferredBytes)

	resumed := &rangeRecorder{}
	h.sender.EXPECT().SendChunk(gomock.Any(), "https://session/r", gomock.Any()).DoAndReturn(resumed.record).Times(2)
	h.store.EXPECT().Metadata(gomock.Any(), gomock.Any()).Return(domain.ObjectMetadata{CRC32C: remoteCRC(t, path)}, nil)

	_, err = h.manager.Resume(task.ID)
	req.NoError(err)
	h.manager.Schedule(ctx)
	req.NoError(h.manager.Wait(ctx, task.ID))

	req.Equal([]string{"bytes 4-7/10", "bytes 8-9/10"}, resumed.headers(), "bytes [0, k) are never sent again")
	done, err := h.manager.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusCompleted, done.Status)
	req.Equal(int64(10), done.TransferredBytes)
}

func TestUpload_ChecksumMismatchDeletesRemoteOnce(t *testing.T) {
	req := require.New(t)
	path := writeFile(t, "a.txt", []byte("123456789"))
	h := newUploadHarness(t, 4, nil)
	ctx := context.Background()

	// a task whose bytes are all sent, with a local CRC32C of deadbeef
	stored := transfer.Task{
		ID: "t1", Kind: transfer.KindUpload, SessionID: "s1", Bucket: "bucket",
		File:       transfer.File{Name: "a.txt", Size: 9, Path: path},
		TargetPath: "sessions/s1/mount", ObjectName: "s1/1-abc.txt",
		Status: transfer.StatusPending, TransferredBytes: 9, Seq: 1,
		CRC32C: "deadbeef", XXHash64: "0000000000000001", UploadURI: "https://session/v",
	}
	req.NoError(h.repo.Save(stored))
	req.NoError(h.manager.Load(ctx))

	ref := domain.ObjectRef{Bucket: "bucket", Name: "s1/1-abc.txt"}
	h.store.EXPECT().Metadata(gomock.Any(), ref).Return(domain.ObjectMetadata{CRC32C: "4waSgw=="}, nil)
	h.store.EXPECT().Delete(gomock.Any(), ref).Return(nil).Times(1)

	h.manager.Schedule(ctx)
	req.NoError(h.manager.Wait(ctx, "t1"))

	task, err := h.manager.Get("t1")
	req.NoError(err)
	req.Equal(transfer.StatusVerificationFailed, task.Status)
	req.Contains(task.Error, "deadbeef")
	req.Contains(task.Error, "e3069283")
}

func TestUpload_ExpiredSessionIsNotUsed(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	path := writeFile(t, "a.txt", []byte("123456789"))
	h := newUploadHarness(t, 4, func() time.Time { return now })
	ctx := context.Background()

	req.NoError(h.repo.Save(transfer.Task{
		ID: "t1", Kind: transfer.KindUpload, SessionID: "s1", Bucket: "bucket",
		File:   transfer.File{Name: "a.txt", Size: 9, Path: path},
		Status: transfer.StatusPaused, TransferredBytes: 4, Seq: 1, ObjectName: "s1/x.txt",
		CRC32C: "e3069283", UploadURI: "https://session/old", UploadURIExpiresAt: now.Add(-time.Minute),
	}))
	req.NoError(h.manager.Load(ctx))
	_, err := h.manager.Resume("t1")
	req.NoError(err)

	h.manager.Schedule(ctx)
	req.NoError(h.manager.Wait(ctx, "t1"))

	task, err := h.manager.Get("t1")
	req.NoError(err)
	req.Equal(transfer.StatusExpired, task.Status)
	req.NotEmpty(task.Error)
}

func TestUpload_SessionLostMidTransferExpires(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, 4, nil)
	path := writeFile(t, "a.txt", []byte("123456789"))

	h.store.EXPECT().CreateResumableUpload(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://session/gone", nil)
	h.sender.EXPECT().SendChunk(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrSessionExpired)

	task, err := h.manager.Enqueue(uploadRequest(path, 9))
	req.NoError(err)
	h.manager.Schedule(context.Background())
	req.NoError(h.manager.Wait(context.Background(), task.ID))

	got, err := h.manager.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusExpired, got.Status)
}

func TestUpload_MissingSourceFails(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, 4, nil)

	task, err := h.manager.Enqueue(uploadRequest(filepath.Join(t.TempDir(), "gone.txt"), 3))
	req.NoError(err)
	h.manager.Schedule(context.Background())
	req.NoError(h.manager.Wait(context.Background(), task.ID))

	got, err := h.manager.Get(task.ID)
	req.NoError(err)
	req.Equal(transfer.StatusFailed, got.Status)
	req.Contains(got.Error, "gone.txt")
}

func TestUpload_EnqueueValidatesTarget(t *testing.T) {
	req := require.New(t)
	h := newUploadHarness(t, 4, nil)

	r := uploadRequest("/tmp/a.txt", 1)
	r.TargetPath = "mount/docs"
	_, err := h.manager.Enqueue(r)
	req.ErrorIs(err, errors.ErrInvalidRequest)

	r = uploadRequest("/tmp/a.txt", 1)
	r.TargetPath = "sessions/other/mount"
	_, err = h.manager.Enqueue(r)
	req.ErrorIs(err, errors.ErrInvalidRequest)

	r = uploadRequest("", 1)
	r.File.Name = ""
	_, err = h.manager.Enqueue(r)
	req.ErrorIs(err, errors.ErrInvalidRequest)
	req.Empty(h.manager.List())
}
