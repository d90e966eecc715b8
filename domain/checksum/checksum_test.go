package checksum

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompute_KnownVectors(t *testing.T) {
	req := require.New(t)

	d, err := Compute(context.Background(), strings.NewReader("123456789"), 9, nil)
	req.NoError(err)
	// CRC-32C check value; IEEE CRC-32 would give cbf43926
	req.Equal("e3069283", d.CRC32C)
	req.Len(d.XXHash64, 16)

	empty, err := Compute(context.Background(), strings.NewReader(""), 0, nil)
	req.NoError(err)
	req.Equal("00000000", empty.CRC32C)
	req.Equal("ef46db3751d8e999", empty.XXHash64)
}

func TestCompute_ProgressIsMonotonicAndEndsAt100(t *testing.T) {
	req := require.New(t)

	size := ChunkSize*2 + 123
	data := bytes.Repeat([]byte{0xAB}, size)

	var seen []float64
	_, err := Compute(context.Background(), bytes.NewReader(data), int64(size), func(p float64) {
		seen = append(seen, p)
	})
	req.NoError(err)
	req.NotEmpty(seen)
	req.Equal(0.0, seen[0])
	req.Equal(100.0, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		req.Greater(seen[i], seen[i-1])
	}
}

func TestCompute_SameDigestsWhateverTheChunking(t *testing.T) {
	req := require.New(t)

	data := bytes.Repeat([]byte("storage-browser"), 100_000)
	whole, err := Compute(context.Background(), bytes.NewReader(data), int64(len(data)), nil)
	req.NoError(err)

	// one byte at a time through a reader that never fills the buffer
	trickle, err := Compute(context.Background(), &oneByteReader{data: data}, int64(len(data)), nil)
	req.NoError(err)
	req.Equal(whole, trickle)
}

func TestCompute_PropagatesStreamError(t *testing.T) {
	req := require.New(t)

	_, err := Compute(context.Background(), &failingReader{}, 10, nil)
	req.Error(err)
	req.Contains(err.Error(), "disk gone")
}

func TestCompute_StopsOnCancelledContext(t *testing.T) {
	req := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compute(ctx, strings.NewReader("data"), 4, nil)
	req.ErrorIs(err, context.Canceled)
}

func TestComputeFile(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "f.bin")
	req.NoError(os.WriteFile(path, []byte("123456789"), 0o600))

	d, err := ComputeFile(context.Background(), path, nil)
	req.NoError(err)
	req.Equal("e3069283", d.CRC32C)
}

func TestEncodingConversions(t *testing.T) {
	req := require.New(t)

	b64, err := HexToBase64("e3069283")
	req.NoError(err)
	req.Equal("4waSgw==", b64)

	h, err := Base64ToHex("3q2+7w==")
	req.NoError(err)
	req.Equal("deadbeef", h)

	_, err = HexToBase64("zz")
	req.Error(err)
}

func TestMatchesRemote(t *testing.T) {
	req := require.New(t)

	ok, err := MatchesRemote("E3069283", "4waSgw==")
	req.NoError(err)
	req.True(ok)

	ok, err = MatchesRemote("deadbeef", "4waSgw==")
	req.NoError(err)
	req.False(ok)

	_, err = MatchesRemote("deadbeef", "")
	req.Error(err)
}

func TestContentName(t *testing.T) {
	req := require.New(t)

	at := time.UnixMilli(1700000000123)
	req.Equal("1700000000123-ef46db3751d8e999.jpg", ContentName(at, "ef46db3751d8e999", "Holiday.JPG"))
	req.Equal("1700000000123-ef46db3751d8e999", ContentName(at, "ef46db3751d8e999", "README"))
}

type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, fmt.Errorf("disk gone") }
