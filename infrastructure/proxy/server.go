package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/errors"
	"storage-browser/observability"
)

const maxRequestBytes = 1 << 20

// DriverFactory builds an object store acting with the forwarded credentials.
// A store that implements io.Closer is closed once its call returns.
type DriverFactory func(ctx context.Context, auth json.RawMessage) (contract.ObjectStore, error)

// Server executes relayed calls. It holds no per-caller state: every request
// carries its own credentials.
type Server struct {
	newDriver DriverFactory
	validate  *validator.Validate
	log       *slog.Logger
}

func NewServer(newDriver DriverFactory, log *slog.Logger) *Server {
	return &Server{newDriver: newDriver, validate: validator.New(), log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /{$}", s.handleCall)
	return mux
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.reply(w, req.Method, nil, fmt.Errorf("decoding request: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.reply(w, req.Method, nil, fmt.Errorf("invalid request: %w", err))
		return
	}

	start := time.Now()
	data, err := s.Execute(r.Context(), req)
	s.log.Debug("Relayed call", "method", req.Method, "bucket", req.Bucket, "file", req.File,
		"took", time.Since(start), "error", err)
	s.reply(w, req.Method, data, err)
}

func (s *Server) reply(w http.ResponseWriter, method string, data any, callErr error) {
	resp := Response{Status: http.StatusOK}
	if callErr != nil {
		resp = Response{Status: http.StatusInternalServerError, Message: callErr.Error()}
	} else if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			resp = Response{Status: http.StatusInternalServerError, Message: err.Error()}
		} else {
			resp.Data = raw
		}
	}
	observability.RecordProxyCall(method, resp.Status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("Failed to write relay response", "method", method, "error", err)
	}
}

// Execute runs one call against a driver built for the request credentials
// and returns a plain, provider-free result.
func (s *Server) Execute(ctx context.Context, req Request) (any, error) {
	if !lo.Contains(methods, req.Method) {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMethod, req.Method)
	}
	store, err := s.newDriver(ctx, req.Auth)
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				s.log.Warn("Failed to close object store", "method", req.Method, "error", err)
			}
		}()
	}
	obj := domain.ObjectRef{Bucket: req.Bucket, Name: req.File}

	switch req.Method {
	case MethodCreateResumableUpload:
		meta, err := arg[domain.UploadMetadata](req.Args, 0)
		if err != nil {
			return nil, err
		}
		return store.CreateResumableUpload(ctx, obj, meta)
	case MethodGetSignedURL:
		action, err := arg[string](req.Args, 0)
		if err != nil {
			return nil, err
		}
		expires, err := arg[int64](req.Args, 1)
		if err != nil {
			return nil, err
		}
		return store.SignedURL(ctx, obj, domain.SignedURLAction(action), time.UnixMilli(expires))
	case MethodGetMetadata:
		return store.Metadata(ctx, obj)
	case MethodDelete:
		return nil, store.Delete(ctx, obj)
	case MethodExists:
		return store.Exists(ctx, obj)
	case MethodMove:
		destination, err := arg[string](req.Args, 0)
		if err != nil {
			return nil, err
		}
		return nil, store.Move(ctx, obj, destination)
	case MethodGetFiles:
		prefix, err := argOr(req.Args, 0, "")
		if err != nil {
			return nil, err
		}
		objects, err := store.List(ctx, req.Bucket, prefix)
		if objects == nil {
			objects = []domain.ObjectMetadata{}
		}
		return objects, err
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMethod, req.Method)
	}
}

func arg[T any](args []json.RawMessage, i int) (T, error) {
	var v T
	if i >= len(args) {
		return v, fmt.Errorf("missing argument %d", i)
	}
	if err := json.Unmarshal(args[i], &v); err != nil {
		return v, fmt.Errorf("argument %d: %w", i, err)
	}
	return v, nil
}

func argOr[T any](args []json.RawMessage, i int, fallback T) (T, error) {
	if i >= len(args) {
		return fallback, nil
	}
	return arg[T](args, i)
}
