package domain

import "time"

// Record is one entry of the metadata index: an object as seen by the
// browser. Records are soft-deleted, never removed.
type Record struct {
	ID        string     `json:"id"`
	Path      string     `json:"path"`
	MD5Hash   string     `json:"md5Hash,omitempty"`
	SizeBytes int64      `json:"sizeBytes"`
	DeletedAt *time.Time `json:"deletedAt"`
	MimeType  string     `json:"mimeType,omitempty"`
}

func (r Record) IsDeleted() bool { return r.DeletedAt != nil }

// MoveRecordRequest is the body of PUT /records/{id}/path.
type MoveRecordRequest struct {
	NewPath string `json:"newPath" validate:"required,max=1024"`
}

// GenerateReport counts what a regeneration of the index changed.
type GenerateReport struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Revived int `json:"revived"`
}
