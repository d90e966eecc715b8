// Package proxy relays object-store calls over a single JSON RPC endpoint.
// The client forwards the caller's credentials with every call; the server
// builds a provider driver for them and executes the named method.
package proxy

import (
	"encoding/json"
)

const (
	MethodCreateResumableUpload = "createResumableUpload"
	MethodGetSignedURL          = "getSignedUrl"
	MethodGetMetadata           = "getMetadata"
	MethodDelete                = "delete"
	MethodExists                = "exists"
	MethodMove                  = "move"
	MethodGetFiles              = "getFiles"
)

var methods = []string{
	MethodCreateResumableUpload, MethodGetSignedURL, MethodGetMetadata,
	MethodDelete, MethodExists, MethodMove, MethodGetFiles,
}

// Request is the RPC envelope. Bucket and File are optional: getFiles only
// names a bucket.
type Request struct {
	Auth   json.RawMessage   `json:"auth" validate:"required"`
	Bucket string            `json:"bucket,omitempty"`
	File   string            `json:"file,omitempty"`
	Method string            `json:"method" validate:"required"`
	Args   []json.RawMessage `json:"args"`
}

// Response carries Data on success and Message on failure.
type Response struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}
