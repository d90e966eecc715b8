package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Path model
	ErrPathParse   = fmt.Errorf("malformed entity path")
	ErrRootPath    = fmt.Errorf("operation not allowed on a root-level path")
	ErrInvalidName = fmt.Errorf("invalid entry name")
	ErrInvalidMove = fmt.Errorf("invalid move destination")

	// Transfer tasks
	ErrIllegalTransition = fmt.Errorf("illegal status transition")
	ErrFrozenProgress    = fmt.Errorf("transferred bytes are frozen once the task is settled")
	ErrInvalidProgress   = fmt.Errorf("transferred bytes out of range")
	ErrTaskNotFound      = fmt.Errorf("transfer task not found")
	ErrInvalidRequest    = fmt.Errorf("invalid transfer request")

	// Transfer pipeline
	ErrChecksumMismatch  = fmt.Errorf("remote checksum does not match local checksum")
	ErrSessionExpired    = fmt.Errorf("resumable upload session expired")
	ErrURLExpired        = fmt.Errorf("signed url expired")
	ErrInsufficientSpace = fmt.Errorf("not enough free space on destination")
	ErrIncompleteStream  = fmt.Errorf("object stream ended before the expected size")
	ErrUnexpectedStatus  = fmt.Errorf("unexpected http status")

	// Object proxy
	ErrProxyCall     = fmt.Errorf("object proxy call failed")
	ErrUnknownMethod = fmt.Errorf("unknown object proxy method")
	ErrObjectMissing = fmt.Errorf("object does not exist")

	// Metadata records
	ErrRecordNotFound = fmt.Errorf("metadata record not found")
)
