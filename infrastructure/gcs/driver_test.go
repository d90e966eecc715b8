package gcs

import (
	"fmt"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"

	"storage-browser/domain/checksum"
	"storage-browser/errors"
)

func TestEncodeCRC32C_MatchesChecksumEngine(t *testing.T) {
	req := require.New(t)
	encoded := EncodeCRC32C(0xe3069283)
	req.Equal("4waSgw==", encoded)

	ok, err := checksum.MatchesRemote("e3069283", encoded)
	req.NoError(err)
	req.True(ok)
}

func TestSignedHeaders_SortedLowerCase(t *testing.T) {
	req := require.New(t)
	got := signedHeaders(map[string]string{
		"x-goog-resumable":   "start",
		"Content-Type":       "text/plain",
		"x-goog-meta-crc32c": "e3069283",
	})
	req.Equal([]string{"content-type:text/plain", "x-goog-meta-crc32c:e3069283", "x-goog-resumable:start"}, got)
}

func TestMapErr(t *testing.T) {
	req := require.New(t)
	req.ErrorIs(mapErr(storage.ErrObjectNotExist), errors.ErrObjectMissing)
	other := fmt.Errorf("boom")
	req.Equal(other, mapErr(other))
	req.NoError(mapErr(nil))
}
