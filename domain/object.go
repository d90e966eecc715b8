package domain

import "time"

// ObjectRef names one object of a bucket.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ObjectMetadata is the sanitized view of a remote object, as returned by the
// object proxy: provider handles are stripped, only plain values remain.
type ObjectMetadata struct {
	Name        string            `json:"name"`
	Bucket      string            `json:"bucket"`
	Size        int64             `json:"size"`
	ContentType string            `json:"contentType,omitempty"`
	CRC32C      string            `json:"crc32c,omitempty"`  // base64 of the big-endian 4-byte value
	MD5Hash     string            `json:"md5Hash,omitempty"` // base64
	Updated     time.Time         `json:"updated,omitzero"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UploadMetadata travels with a resumable upload session and ends up as
// custom metadata on the object.
type UploadMetadata struct {
	ContentType  string `json:"contentType,omitempty"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	CRC32C       string `json:"crc32c"`
	XXHash64     string `json:"xxHash64"`
}

// CustomMetadata is the flattened form stored on the object.
func (m UploadMetadata) CustomMetadata() map[string]string {
	return map[string]string{
		MetaOriginalName: m.OriginalName,
		MetaPath:         m.Path,
		MetaCRC32C:       m.CRC32C,
		MetaXXHash64:     m.XXHash64,
	}
}

const (
	MetaOriginalName = "originalname"
	MetaPath         = "path"
	MetaCRC32C       = "crc32c"
	MetaXXHash64     = "xxhash64"
)

type SignedURLAction string

const (
	SignedURLRead  SignedURLAction = "read"
	SignedURLWrite SignedURLAction = "write"
)
