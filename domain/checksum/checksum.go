// Package checksum computes, in one streaming pass, the two digests used by
// the upload pipeline: xxHash64 for content-addressed naming and CRC32C for
// verifying the remote copy.
package checksum

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ChunkSize bounds the memory used while hashing, whatever the file size.
const ChunkSize = 4 * 1024 * 1024

// The object store reports CRC32C (Castagnoli), not IEEE CRC-32.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Digests holds lower-case hex encodings.
type Digests struct {
	CRC32C   string `json:"crc32c"`
	XXHash64 string `json:"xxHash64"`
}

// ProgressFunc receives the cumulative percentage, from 0 to 100.
type ProgressFunc func(percent float64)

// Compute reads r until EOF. size is only used for progress reporting; a
// non-positive size reports 100 once the stream is exhausted.
func Compute(ctx context.Context, r io.Reader, size int64, onProgress ProgressFunc) (Digests, error) {
	crc := crc32.New(crc32cTable)
	xx := xxhash.New()
	w := io.MultiWriter(crc, xx)

	buf := make([]byte, ChunkSize)
	var read int64
	lastPercent := -1.0

	report := func(p float64) {
		if onProgress == nil || p <= lastPercent {
			return
		}
		lastPercent = p
		onProgress(p)
	}
	report(0)

	for {
		if err := ctx.Err(); err != nil {
			return Digests{}, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = w.Write(buf[:n])
			read += int64(n)
			if size > 0 {
				// 100 is reserved for the end of the stream
				report(min(float64(read)/float64(size)*100, 99.99))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Digests{}, fmt.Errorf("hashing stream after %d bytes: %w", read, err)
		}
	}
	report(100)

	return Digests{
		CRC32C:   fmt.Sprintf("%08x", crc.Sum32()),
		XXHash64: fmt.Sprintf("%016x", xx.Sum64()),
	}, nil
}

// ComputeFile hashes the file at path.
func ComputeFile(ctx context.Context, path string, onProgress ProgressFunc) (Digests, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digests{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Digests{}, err
	}
	return Compute(ctx, f, info.Size(), onProgress)
}

// HexToBase64 converts the local encoding into the one the object store uses.
func HexToBase64(h string) (string, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return "", fmt.Errorf("decoding hex checksum %q: %w", h, err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func Base64ToHex(b string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b)
	if err != nil {
		return "", fmt.Errorf("decoding base64 checksum %q: %w", b, err)
	}
	return hex.EncodeToString(raw), nil
}

// MatchesRemote compares a local hex CRC32C with the base64 value reported by
// the object store.
func MatchesRemote(localHex, remoteBase64 string) (bool, error) {
	if remoteBase64 == "" {
		return false, fmt.Errorf("remote object reports no checksum")
	}
	local, err := HexToBase64(strings.ToLower(localHex))
	if err != nil {
		return false, err
	}
	return local == remoteBase64, nil
}

// ContentName derives the remote object name from the creation time and the
// content hash, keeping the original extension.
func ContentName(createdAt time.Time, xxHash64, originalName string) string {
	return fmt.Sprintf("%d-%s%s", createdAt.UnixMilli(), xxHash64, strings.ToLower(filepath.Ext(originalName)))
}
