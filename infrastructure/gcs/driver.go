// Package gcs executes object-store calls against Google Cloud Storage.
package gcs

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/errors"
)

// Driver implements contract.ObjectStore with the credentials it was built for.
type Driver struct {
	client     *storage.Client
	httpClient *http.Client
	log        *slog.Logger
}

func NewDriver(client *storage.Client, httpClient *http.Client, log *slog.Logger) *Driver {
	return &Driver{client: client, httpClient: httpClient, log: log}
}

// Close releases the storage client and its connections.
func (d *Driver) Close() error {
	return d.client.Close()
}

// NewFactory returns a driver factory for the relay server: the forwarded
// auth payload is a service-account JSON key. Every driver owns its client,
// the relay closes it after the call.
func NewFactory(httpClient *http.Client, log *slog.Logger) func(ctx context.Context, auth json.RawMessage) (contract.ObjectStore, error) {
	return func(ctx context.Context, auth json.RawMessage) (contract.ObjectStore, error) {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON(auth))
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		return NewDriver(client, httpClient, log), nil
	}
}

// CreateResumableUpload opens a session with a V4-signed POST. The metadata
// travels as x-goog-meta headers, the session URI comes back in Location.
func (d *Driver) CreateResumableUpload(ctx context.Context, obj domain.ObjectRef, meta domain.UploadMetadata) (string, error) {
	headers := map[string]string{"x-goog-resumable": "start"}
	if meta.ContentType != "" {
		headers["Content-Type"] = meta.ContentType
	}
	for k, v := range meta.CustomMetadata() {
		headers["x-goog-meta-"+k] = v
	}

	signed, err := d.client.Bucket(obj.Bucket).SignedURL(obj.Name, &storage.SignedURLOptions{
		Method:  http.MethodPost,
		Expires: time.Now().Add(15 * time.Minute),
		Scheme:  storage.SigningSchemeV4,
		Headers: signedHeaders(headers),
	})
	if err != nil {
		return "", fmt.Errorf("signing session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signed, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("opening resumable session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: session start answered %d", errors.ErrUnexpectedStatus, resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%w: session start returned no Location", errors.ErrUnexpectedStatus)
	}
	d.log.Debug("Opened resumable session", "bucket", obj.Bucket, "object", obj.Name)
	return location, nil
}

// signedHeaders renders headers as the sorted "key:value" list V4 signing expects.
func signedHeaders(headers map[string]string) []string {
	out := make([]string, 0, len(headers))
	for k, v := range headers {
		out = append(out, strings.ToLower(k)+":"+v)
	}
	sort.Strings(out)
	return out
}

func (d *Driver) SignedURL(_ context.Context, obj domain.ObjectRef, action domain.SignedURLAction, expiresAt time.Time) (string, error) {
	method := http.MethodGet
	if action == domain.SignedURLWrite {
		method = http.MethodPut
	}
	return d.client.Bucket(obj.Bucket).SignedURL(obj.Name, &storage.SignedURLOptions{
		Method:  method,
		Expires: expiresAt,
		Scheme:  storage.SigningSchemeV4,
	})
}

func (d *Driver) Metadata(ctx context.Context, obj domain.ObjectRef) (domain.ObjectMetadata, error) {
	attrs, err := d.client.Bucket(obj.Bucket).Object(obj.Name).Attrs(ctx)
	if err != nil {
		return domain.ObjectMetadata{}, mapErr(err)
	}
	return toMetadata(attrs), nil
}

func (d *Driver) Delete(ctx context.Context, obj domain.ObjectRef) error {
	return mapErr(d.client.Bucket(obj.Bucket).Object(obj.Name).Delete(ctx))
}

func (d *Driver) Exists(ctx context.Context, obj domain.ObjectRef) (bool, error) {
	_, err := d.client.Bucket(obj.Bucket).Object(obj.Name).Attrs(ctx)
	if goerrors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Move copies to destination inside the same bucket then deletes the source.
func (d *Driver) Move(ctx context.Context, obj domain.ObjectRef, destination string) error {
	bucket := d.client.Bucket(obj.Bucket)
	src := bucket.Object(obj.Name)
	if _, err := bucket.Object(destination).CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("copying %s to %s: %w", obj.Name, destination, mapErr(err))
	}
	return mapErr(src.Delete(ctx))
}

func (d *Driver) List(ctx context.Context, bucket, prefix string) ([]domain.ObjectMetadata, error) {
	var objects []domain.ObjectMetadata
	it := d.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if goerrors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", bucket, prefix, err)
		}
		objects = append(objects, toMetadata(attrs))
	}
	return objects, nil
}

func toMetadata(attrs *storage.ObjectAttrs) domain.ObjectMetadata {
	return domain.ObjectMetadata{
		Name:        attrs.Name,
		Bucket:      attrs.Bucket,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		CRC32C:      EncodeCRC32C(attrs.CRC32C),
		MD5Hash:     base64.StdEncoding.EncodeToString(attrs.MD5),
		Updated:     attrs.Updated,
		Metadata:    attrs.Metadata,
	}
}

// EncodeCRC32C renders a checksum the way the JSON API does: base64 of the
// big-endian 4-byte value.
func EncodeCRC32C(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return base64.StdEncoding.EncodeToString(b[:])
}

func mapErr(err error) error {
	if goerrors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %v", errors.ErrObjectMissing, err)
	}
	return err
}
