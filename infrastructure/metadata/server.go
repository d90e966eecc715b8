// Package metadata exposes the record index over HTTP.
package metadata

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/errors"
	"storage-browser/observability"
)

const (
	routeList     = "/list"
	routeGenerate = "/generate"
	routeMove     = "/records/{id}/path"

	maxBodyBytes = 64 << 10
)

type errorBody struct {
	Message string `json:"message"`
}

type Server struct {
	index    contract.MetadataIndex
	validate *validator.Validate
	log      *slog.Logger
}

func NewServer(index contract.MetadataIndex, log *slog.Logger) *Server {
	return &Server{index: index, validate: validator.New(), log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET "+routeList, s.handleList)
	mux.HandleFunc("POST "+routeGenerate, s.handleGenerate)
	mux.HandleFunc("PUT "+routeMove, s.handleMove)
	return mux
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.index.List(r.URL.Query().Get("parent"))
	s.reply(w, routeList, records, err)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	report, err := s.index.Generate(r.Context())
	s.reply(w, routeGenerate, report, err)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var body domain.MoveRecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.reply(w, routeMove, nil, fmt.Errorf("%w: decoding body: %v", errors.ErrInvalidRequest, err))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		s.reply(w, routeMove, nil, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
		return
	}
	record, err := s.index.Move(r.PathValue("id"), body.NewPath)
	s.reply(w, routeMove, record, err)
}

func (s *Server) reply(w http.ResponseWriter, route string, data any, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
		data = errorBody{Message: err.Error()}
		if status == http.StatusInternalServerError {
			s.log.Error("Metadata request failed", "route", route, "error", err)
		}
	}
	observability.RecordMetadataRequest(route, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("Failed to write metadata response", "route", route, "error", err)
	}
}

func statusOf(err error) int {
	switch {
	case goerrors.Is(err, errors.ErrRecordNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, errors.ErrInvalidRequest),
		goerrors.Is(err, errors.ErrPathParse),
		goerrors.Is(err, errors.ErrRootPath),
		goerrors.Is(err, errors.ErrInvalidName),
		goerrors.Is(err, errors.ErrInvalidMove):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
