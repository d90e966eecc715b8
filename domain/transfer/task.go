// Package transfer holds the value objects describing one file transfer and
// the rules that govern how they change.
package transfer

import (
	"fmt"
	"time"

	"storage-browser/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// File describes the local side of a transfer. Path is the source file for
// uploads and the destination file for downloads.
type File struct {
	Name         string    `json:"name" validate:"required,max=1024"`
	Size         int64     `json:"size" validate:"gte=0"`
	Type         string    `json:"type,omitempty"`
	LastModified time.Time `json:"lastModified"`
	Path         string    `json:"pathOnDrive,omitempty" validate:"required"`
}

type Task struct {
	ID               string    `json:"id"`
	Kind             Kind      `json:"kind"`
	SessionID        string    `json:"sessionId"`
	Bucket           string    `json:"bucket"`
	File             File      `json:"file"`
	TargetPath       string    `json:"targetPath"`
	ObjectName       string    `json:"objectName,omitempty"`
	TransferredBytes int64     `json:"transferredBytes"`
	Status           Status    `json:"status"`
	Priority         int       `json:"priority"`
	Seq              uint64    `json:"seq"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	CRC32C             string    `json:"crc32c,omitempty"`
	XXHash64           string    `json:"xxHash64,omitempty"`
	UploadURI          string    `json:"uploadUri,omitempty"`
	UploadURIExpiresAt time.Time `json:"uploadUriExpiresAt,omitzero"`
	SignedURL          string    `json:"signedUrl,omitempty"`
	SignedURLExpiresAt time.Time `json:"signedUrlExpiresAt,omitzero"`

	Error string `json:"error,omitempty"`
}

// Remaining is the number of bytes still to transfer.
func (t Task) Remaining() int64 {
	if t.File.Size <= t.TransferredBytes {
		return 0
	}
	return t.File.Size - t.TransferredBytes
}

// UploadRequest is what a caller provides to queue an upload.
type UploadRequest struct {
	SessionID  string `validate:"required"`
	Bucket     string `validate:"required"`
	TargetPath string `validate:"required"`
	File       File   `validate:"required"`
	Priority   int    `validate:"gte=0"`
}

// DownloadRequest is what a caller provides to queue a download.
type DownloadRequest struct {
	SessionID  string `validate:"required"`
	Bucket     string `validate:"required"`
	ObjectName string `validate:"required,max=1024"`
	SourcePath string
	File       File `validate:"required"`
	Priority   int  `validate:"gte=0"`
}

func NewUpload(r UploadRequest, seq uint64, now time.Time) (Task, error) {
	if err := validate.Struct(r); err != nil {
		return Task{}, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return Task{
		ID:         uuid.NewString(),
		Kind:       KindUpload,
		SessionID:  r.SessionID,
		Bucket:     r.Bucket,
		File:       r.File,
		TargetPath: r.TargetPath,
		Status:     StatusPending,
		Priority:   r.Priority,
		Seq:        seq,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func NewDownload(r DownloadRequest, seq uint64, now time.Time) (Task, error) {
	if err := validate.Struct(r); err != nil {
		return Task{}, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return Task{
		ID:         uuid.NewString(),
		Kind:       KindDownload,
		SessionID:  r.SessionID,
		Bucket:     r.Bucket,
		File:       r.File,
		TargetPath: r.SourcePath,
		ObjectName: r.ObjectName,
		Status:     StatusPending,
		Priority:   r.Priority,
		Seq:        seq,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Patch lists the fields to change; nil fields are left untouched.
type Patch struct {
	Status             *Status
	TransferredBytes   *int64
	Priority           *int
	ObjectName         *string
	CRC32C             *string
	XXHash64           *string
	UploadURI          *string
	UploadURIExpiresAt *time.Time
	SignedURL          *string
	SignedURLExpiresAt *time.Time
	FileSize           *int64
	FileType           *string
	Error              *string
}

// With applies p to t and returns the new task. t is never modified.
func With(t Task, p Patch, now time.Time) (Task, error) {
	next := t

	if p.Status != nil {
		if !CanTransition(t.Kind, t.Status, *p.Status) {
			return t, fmt.Errorf("%w: %s task %s cannot go from %s to %s",
				errors.ErrIllegalTransition, t.Kind, t.ID, t.Status, *p.Status)
		}
		next.Status = *p.Status
	}
	if p.FileSize != nil {
		next.File.Size = *p.FileSize
	}
	if p.FileType != nil {
		next.File.Type = *p.FileType
	}

	if p.TransferredBytes != nil && *p.TransferredBytes != t.TransferredBytes {
		bytes := *p.TransferredBytes
		if bytes < 0 {
			return t, fmt.Errorf("%w: %d", errors.ErrInvalidProgress, bytes)
		}
		if t.Status.IsTerminal() && next.Status.IsTerminal() {
			return t, fmt.Errorf("%w: task %s is %s", errors.ErrFrozenProgress, t.ID, t.Status)
		}
		if next.File.Size > 0 && bytes > next.File.Size {
			bytes = next.File.Size
		}
		next.TransferredBytes = bytes
	}

	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.ObjectName != nil {
		next.ObjectName = *p.ObjectName
	}
	if p.CRC32C != nil {
		next.CRC32C = *p.CRC32C
	}
	if p.XXHash64 != nil {
		next.XXHash64 = *p.XXHash64
	}
	if p.UploadURI != nil {
		next.UploadURI = *p.UploadURI
	}
	if p.UploadURIExpiresAt != nil {
		next.UploadURIExpiresAt = *p.UploadURIExpiresAt
	}
	if p.SignedURL != nil {
		next.SignedURL = *p.SignedURL
	}
	if p.SignedURLExpiresAt != nil {
		next.SignedURLExpiresAt = *p.SignedURLExpiresAt
	}
	if p.Error != nil {
		next.Error = *p.Error
	}

	next.UpdatedAt = now
	return next, nil
}
