//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"io"
	"reflect"
	"time"

	"storage-browser/domain"
	"storage-browser/domain/transfer"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	if named, ok := w.(interface{ Name() string }); ok {
		return named.Name()
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ObjectStore is the set of remote object operations the transfer pipeline
// needs. The client side talks to the proxy relay; the relay itself serves
// the same calls from a provider driver.
type ObjectStore interface {
	CreateResumableUpload(ctx context.Context, obj domain.ObjectRef, meta domain.UploadMetadata) (string, error)
	SignedURL(ctx context.Context, obj domain.ObjectRef, action domain.SignedURLAction, expiresAt time.Time) (string, error)
	Metadata(ctx context.Context, obj domain.ObjectRef) (domain.ObjectMetadata, error)
	Delete(ctx context.Context, obj domain.ObjectRef) error
	Exists(ctx context.Context, obj domain.ObjectRef) (bool, error)
	Move(ctx context.Context, obj domain.ObjectRef, destination string) error
	List(ctx context.Context, bucket, prefix string) ([]domain.ObjectMetadata, error)
}

// TaskRepository persists the transfer task collection.
type TaskRepository interface {
	Save(task transfer.Task) error
	SaveAll(tasks []transfer.Task) error
	Delete(kind transfer.Kind, id string) error
	List(kind transfer.Kind) ([]transfer.Task, error)
}

// ChunkSender PUTs one byte range to a resumable upload session.
type ChunkSender interface {
	SendChunk(ctx context.Context, sessionURI string, chunk ChunkRange) error
}

// ChunkRange is the byte range [Start, End] of a Total-byte object.
type ChunkRange struct {
	Start int64
	End   int64
	Total int64
	Body  []byte
}

// ObjectFetcher streams an object from a signed URL starting at offset.
type ObjectFetcher interface {
	Fetch(ctx context.Context, url string, offset int64) (FetchResult, error)
}

// FetchResult is an open object stream. Offset is the position of the first
// byte of Body: the requested offset when the server honoured the range, 0
// when it restarted from the beginning.
type FetchResult struct {
	Body      io.ReadCloser
	Offset    int64
	TotalSize int64
}

// RecordRepository stores the metadata index.
type RecordRepository interface {
	All() ([]domain.Record, error)
	Get(id string) (domain.Record, error)
	ReplaceAll(records []domain.Record) error
	Update(record domain.Record) error
}

// MetadataIndex is the record index served by the metadata API.
type MetadataIndex interface {
	List(parent string) ([]domain.Record, error)
	Generate(ctx context.Context) (domain.GenerateReport, error)
	Move(id, newPath string) (domain.Record, error)
}

// TransferQueue is what the scheduler worker drives: it admits pending tasks
// on every tick and whenever the queue signals a change.
type TransferQueue interface {
	Kind() transfer.Kind
	Wake() <-chan struct{}
	Schedule(ctx context.Context) []transfer.Task
}
