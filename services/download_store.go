package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/disk"
	"golang.org/x/time/rate"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/domain/progress"
	"storage-browser/domain/transfer"
	"storage-browser/errors"
	"storage-browser/observability"
)

const (
	DefaultSignedURLTTL     = 15 * time.Minute
	progressPublishInterval = 250 * time.Millisecond
)

// FreeSpaceFunc reports the bytes available to write under dir.
type FreeSpaceFunc func(dir string) (uint64, error)

func DiskFreeSpace(dir string) (uint64, error) {
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

type DownloadConfig struct {
	MaxConcurrent int
	SignedURLTTL  time.Duration
	Now           func() time.Time
	FreeSpace     FreeSpaceFunc
}

// DownloadStore streams objects from signed URLs to local files, resuming
// with range requests.
type DownloadStore struct {
	*transferQueue
	store     contract.ObjectStore
	fetcher   contract.ObjectFetcher
	ttl       time.Duration
	freeSpace FreeSpaceFunc
}

func NewDownloadStore(cfg DownloadConfig, store contract.ObjectStore, fetcher contract.ObjectFetcher, repo contract.TaskRepository, log *slog.Logger) *DownloadStore {
	s := &DownloadStore{
		transferQueue: newTransferQueue(transfer.KindDownload, cfg.MaxConcurrent, repo, cfg.Now, log),
		store:         store,
		fetcher:       fetcher,
		ttl:           lo.Ternary(cfg.SignedURLTTL > 0, cfg.SignedURLTTL, DefaultSignedURLTTL),
		freeSpace:     cfg.FreeSpace,
	}
	if s.freeSpace == nil {
		s.freeSpace = DiskFreeSpace
	}
	s.run = s.download
	s.discard = s.discardPartial
	return s
}

// Enqueue queues the download of one object to a local file.
func (s *DownloadStore) Enqueue(req transfer.DownloadRequest) (transfer.Task, error) {
	return s.add(func(seq uint64, now time.Time) (transfer.Task, error) {
		return transfer.NewDownload(req, seq, now)
	})
}

func (s *DownloadStore) download(ctx context.Context, id string, tracker *progress.Tracker) error {
	task, err := s.update(ctx, id, transfer.Patch{Status: lo.ToPtr(transfer.StatusFetchingURL)})
	if err != nil {
		return err
	}
	if task, err = s.signedURL(ctx, task); err != nil {
		return err
	}
	if err := s.checkFreeSpace(task); err != nil {
		return err
	}
	if task, err = s.update(ctx, id, transfer.Patch{Status: lo.ToPtr(transfer.StatusDownloading)}); err != nil {
		return err
	}

	offset, err := localOffset(task)
	if err != nil {
		return err
	}
	if offset < task.TransferredBytes {
		s.log.Warn("Local file is shorter than the recorded progress", "task_id", id, "recorded", task.TransferredBytes, "on_disk", offset)
	}

	res, err := s.fetcher.Fetch(ctx, task.SignedURL, offset)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if task.File.Size == 0 && res.TotalSize > 0 {
		if task, err = s.touch(ctx, id, transfer.Patch{FileSize: &res.TotalSize}); err != nil {
			return err
		}
	}

	f, err := openAt(task.File.Path, res.Offset)
	if err != nil {
		return err
	}
	defer f.Close()

	w := &progressWriter{
		written: res.Offset,
		onWrite: func(written int64) error {
			tracker.Update(written)
			_, err := s.touch(ctx, id, transfer.Patch{TransferredBytes: &written})
			return err
		},
		publish:  func() { s.flush(id) },
		throttle: &rate.Sometimes{Interval: progressPublishInterval},
	}
	if res.Offset < task.TransferredBytes {
		s.log.Info("Download rebased", "task_id", id, "previous_bytes", task.TransferredBytes, "offset", res.Offset)
		if err := w.onWrite(res.Offset); err != nil {
			return err
		}
	}

	copied, err := io.Copy(io.MultiWriter(f, w), res.Body)
	observability.RecordTransferBytes(string(transfer.KindDownload), copied)
	if err != nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return fmt.Errorf("streaming %s: %w", task.ObjectName, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", task.File.Path, err)
	}

	if task.File.Size > 0 && w.written != task.File.Size {
		return fmt.Errorf("%w: %s ended at %d of %d bytes", errors.ErrIncompleteStream, task.ObjectName, w.written, task.File.Size)
	}
	done := w.written
	_, err = s.update(ctx, id, transfer.Patch{
		Status:           lo.ToPtr(transfer.StatusCompleted),
		FileSize:         &done,
		TransferredBytes: &done,
	})
	return err
}

// discardPartial deletes the local file of a removed download that never
// completed.
func (s *DownloadStore) discardPartial(task transfer.Task) {
	if task.Status == transfer.StatusCompleted || task.File.Path == "" {
		return
	}
	if err := os.Remove(task.File.Path); err != nil && !goerrors.Is(err, fs.ErrNotExist) {
		s.log.Warn("Could not delete partial download", "task_id", task.ID, "path", task.File.Path, "error", err)
		return
	}
	s.log.Debug("Partial download deleted", "task_id", task.ID, "path", task.File.Path)
}

// signedURL reuses the URL cached on the task or asks the store for a new
// one. A cached URL past its expiry is not worth a request.
func (s *DownloadStore) signedURL(ctx context.Context, task transfer.Task) (transfer.Task, error) {
	if task.SignedURL != "" {
		if !task.SignedURLExpiresAt.IsZero() && !s.now().Before(task.SignedURLExpiresAt) {
			return task, fmt.Errorf("%w: cached url of %s expired at %s", errors.ErrURLExpired, task.ID, task.SignedURLExpiresAt)
		}
		return task, nil
	}

	expiresAt := s.now().Add(s.ttl)
	url, err := s.store.SignedURL(ctx, domain.ObjectRef{Bucket: task.Bucket, Name: task.ObjectName}, domain.SignedURLRead, expiresAt)
	if err != nil {
		return task, fmt.Errorf("fetching signed url: %w", err)
	}
	return s.update(ctx, task.ID, transfer.Patch{SignedURL: &url, SignedURLExpiresAt: &expiresAt})
}

func (s *DownloadStore) checkFreeSpace(task transfer.Task) error {
	dir := filepath.Dir(task.File.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if task.File.Size == 0 {
		return nil
	}
	free, err := s.freeSpace(dir)
	if err != nil {
		s.log.Warn("Could not read free space, downloading anyway", "dir", dir, "error", err)
		return nil
	}
	if need := uint64(task.Remaining()); free < need {
		return fmt.Errorf("%w: %s needs %d bytes, %d free", errors.ErrInsufficientSpace, dir, need, free)
	}
	return nil
}

// localOffset is the offset a resumed download can trust: the recorded
// progress, capped by what is actually on disk.
func localOffset(task transfer.Task) (int64, error) {
	if task.TransferredBytes == 0 {
		return 0, nil
	}
	info, err := os.Stat(task.File.Path)
	if goerrors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", task.File.Path, err)
	}
	return min(info.Size(), task.TransferredBytes), nil
}

// openAt opens path for writing at offset, dropping anything written past
// it by an interrupted run.
func openAt(path string, offset int64) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := f.Truncate(offset); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncating %s: %w", path, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seeking %s: %w", path, err)
	}
	return f, nil
}

// progressWriter counts streamed bytes. Every write updates the task in
// memory; publication is throttled.
type progressWriter struct {
	written  int64
	onWrite  func(written int64) error
	publish  func()
	throttle *rate.Sometimes
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if err := w.onWrite(w.written); err != nil {
		return 0, err
	}
	w.throttle.Do(w.publish)
	return len(p), nil
}
