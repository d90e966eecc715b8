package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/domain/checksum"
	"storage-browser/domain/entitypath"
	"storage-browser/domain/progress"
	"storage-browser/domain/transfer"
	"storage-browser/errors"
	"storage-browser/observability"
)

const (
	DefaultChunkSize  = 10 * 1024 * 1024
	DefaultSessionTTL = 7 * 24 * time.Hour
)

type UploadConfig struct {
	MaxConcurrent int
	ChunkSize     int64
	SessionTTL    time.Duration
	Now           func() time.Time
}

// UploadManager hashes, uploads in sequential chunks and verifies files
// against a resumable session of the object store.
type UploadManager struct {
	*transferQueue
	store     contract.ObjectStore
	sender    contract.ChunkSender
	chunkSize int64
	ttl       time.Duration
}

func NewUploadManager(cfg UploadConfig, store contract.ObjectStore, sender contract.ChunkSender, repo contract.TaskRepository, log *slog.Logger) *UploadManager {
	m := &UploadManager{
		transferQueue: newTransferQueue(transfer.KindUpload, cfg.MaxConcurrent, repo, cfg.Now, log),
		store:         store,
		sender:        sender,
		chunkSize:     lo.Ternary(cfg.ChunkSize > 0, cfg.ChunkSize, DefaultChunkSize),
		ttl:           lo.Ternary(cfg.SessionTTL > 0, cfg.SessionTTL, DefaultSessionTTL),
	}
	m.run = m.upload
	return m
}

// Enqueue queues an upload of a local file into a target folder.
func (m *UploadManager) Enqueue(req transfer.UploadRequest) (transfer.Task, error) {
	target, err := entitypath.FromString(req.TargetPath)
	if err != nil {
		return transfer.Task{}, fmt.Errorf("%w: target: %v", errors.ErrInvalidRequest, err)
	}
	if target.SessionID() != req.SessionID {
		return transfer.Task{}, fmt.Errorf("%w: target %s is outside session %s", errors.ErrInvalidRequest, target, req.SessionID)
	}
	return m.add(func(seq uint64, now time.Time) (transfer.Task, error) {
		return transfer.NewUpload(req, seq, now)
	})
}

func (m *UploadManager) upload(ctx context.Context, id string, tracker *progress.Tracker) error {
	task, err := m.Get(id)
	if err != nil {
		return err
	}
	if m.sessionExpired(task) {
		return fmt.Errorf("%w: session of %s expired at %s", errors.ErrSessionExpired, id, task.UploadURIExpiresAt)
	}

	if task.UploadURI != "" && task.CRC32C != "" && task.ObjectName != "" {
		task, err = m.update(ctx, id, transfer.Patch{Status: lo.ToPtr(transfer.StatusUploading)})
	} else {
		task, err = m.openSession(ctx, task, tracker)
	}
	if err != nil {
		return err
	}

	if err := m.sendChunks(ctx, task, tracker); err != nil {
		return err
	}
	return m.verify(ctx, id)
}

// openSession runs the hash phase then asks the store for a resumable
// session carrying both digests as metadata. While hashing, the tracker
// counts hashed bytes.
func (m *UploadManager) openSession(ctx context.Context, task transfer.Task, tracker *progress.Tracker) (transfer.Task, error) {
	task, err := m.update(ctx, task.ID, transfer.Patch{Status: lo.ToPtr(transfer.StatusCalculating)})
	if err != nil {
		return task, err
	}

	info, err := os.Stat(task.File.Path)
	if err != nil {
		return task, fmt.Errorf("reading source file: %w", err)
	}
	start := time.Now()
	throttle := &rate.Sometimes{Interval: progressPublishInterval}
	digests, err := checksum.ComputeFile(ctx, task.File.Path, func(percent float64) {
		tracker.Update(int64(percent / 100 * float64(info.Size())))
		if percent >= 100 {
			m.flush(task.ID)
			return
		}
		throttle.Do(func() { m.flush(task.ID) })
	})
	if err != nil {
		return task, fmt.Errorf("hashing %s: %w", task.File.Name, err)
	}
	tracker.Update(task.TransferredBytes)
	m.log.Debug("File hashed", "task_id", task.ID, "crc32c", digests.CRC32C, "xxhash64", digests.XXHash64, "took", time.Since(start))

	contentType := task.File.Type
	if contentType == "" {
		mime, err := mimetype.DetectFile(task.File.Path)
		if err != nil {
			return task, fmt.Errorf("detecting content type: %w", err)
		}
		contentType = mime.String()
	}

	objectName := task.SessionID + "/" + checksum.ContentName(task.CreatedAt, digests.XXHash64, task.File.Name)
	uri, err := m.store.CreateResumableUpload(ctx, domain.ObjectRef{Bucket: task.Bucket, Name: objectName}, domain.UploadMetadata{
		ContentType:  contentType,
		OriginalName: task.File.Name,
		Path:         task.TargetPath,
		CRC32C:       digests.CRC32C,
		XXHash64:     digests.XXHash64,
	})
	if err != nil {
		return task, fmt.Errorf("creating upload session: %w", err)
	}

	return m.update(ctx, task.ID, transfer.Patch{
		Status:             lo.ToPtr(transfer.StatusUploading),
		FileSize:           lo.ToPtr(info.Size()),
		FileType:           &contentType,
		ObjectName:         &objectName,
		CRC32C:             &digests.CRC32C,
		XXHash64:           &digests.XXHash64,
		UploadURI:          &uri,
		UploadURIExpiresAt: lo.ToPtr(m.now().Add(m.ttl)),
	})
}

// sendChunks PUTs the file from the task's byte offset, one chunk at a time.
func (m *UploadManager) sendChunks(ctx context.Context, task transfer.Task, tracker *progress.Tracker) error {
	f, err := os.Open(task.File.Path)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	total := task.File.Size
	if total == 0 {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}
		return m.sender.SendChunk(ctx, task.UploadURI, contract.ChunkRange{})
	}

	buf := make([]byte, min(m.chunkSize, total))
	for offset := task.TransferredBytes; offset < total; {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}
		if m.sessionExpired(task) {
			return fmt.Errorf("%w: session of %s expired at %s", errors.ErrSessionExpired, task.ID, task.UploadURIExpiresAt)
		}

		n := min(m.chunkSize, total-offset)
		chunk := buf[:n]
		read, err := f.ReadAt(chunk, offset)
		if err != nil && !(goerrors.Is(err, io.EOF) && int64(read) == n) {
			return fmt.Errorf("reading bytes %d-%d: %w", offset, offset+n-1, err)
		}

		start := time.Now()
		if err := m.sender.SendChunk(ctx, task.UploadURI, contract.ChunkRange{
			Start: offset, End: offset + n - 1, Total: total, Body: chunk,
		}); err != nil {
			return err
		}
		observability.RecordChunk(time.Since(start))
		observability.RecordTransferBytes(string(transfer.KindUpload), n)

		offset += n
		tracker.Update(offset)
		if task, err = m.update(ctx, task.ID, transfer.Patch{TransferredBytes: &offset}); err != nil {
			return err
		}
	}
	return nil
}

// verify compares the CRC32C the store computed with the local one. On
// mismatch the remote object is deleted before the task fails.
func (m *UploadManager) verify(ctx context.Context, id string) error {
	task, err := m.Get(id)
	if err != nil {
		return err
	}
	ref := domain.ObjectRef{Bucket: task.Bucket, Name: task.ObjectName}
	meta, err := m.store.Metadata(ctx, ref)
	if err != nil {
		return fmt.Errorf("fetching remote metadata: %w", err)
	}

	ok, err := checksum.MatchesRemote(task.CRC32C, meta.CRC32C)
	if err != nil {
		return fmt.Errorf("comparing checksums: %w", err)
	}
	if !ok {
		if delErr := m.store.Delete(ctx, ref); delErr != nil {
			m.log.Error("Failed to delete corrupted upload", "task_id", id, "object", ref.Name, "error", delErr)
		}
		remote, _ := checksum.Base64ToHex(meta.CRC32C)
		return fmt.Errorf("%w: local %s, remote %s", errors.ErrChecksumMismatch, task.CRC32C, remote)
	}

	_, err = m.update(ctx, id, transfer.Patch{
		Status:           lo.ToPtr(transfer.StatusCompleted),
		TransferredBytes: lo.ToPtr(task.File.Size),
	})
	return err
}

func (m *UploadManager) sessionExpired(task transfer.Task) bool {
	return task.UploadURI != "" && !task.UploadURIExpiresAt.IsZero() && !m.now().Before(task.UploadURIExpiresAt)
}
