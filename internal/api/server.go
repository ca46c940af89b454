package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lojasmm/chatmsg/internal/draft"
	"github.com/lojasmm/chatmsg/internal/logger"
	"github.com/lojasmm/chatmsg/internal/metrics"
	"github.com/lojasmm/chatmsg/internal/recipe"
	"github.com/lojasmm/chatmsg/message"
)

// Server exposes the recipe decoder and the draft manager over HTTP.
type Server struct {
	drafts  *draft.Manager
	metrics *metrics.Metrics
	maxBody int64
}

func NewServer(d *draft.Manager, m *metrics.Metrics, maxBody int64) *Server {
	return &Server{drafts: d, metrics: m, maxBody: maxBody}
}

// Routes returns the HTTP handler. Metrics are served from gatherer.
func (s *Server) Routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Requests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.handleCompose)

		r.Post("/drafts", s.handleCreateDraft)
		r.Get("/drafts/{id}", s.handleGetDraft)
		r.Delete("/drafts/{id}", s.handleDeleteDraft)
		r.Post("/drafts/{id}/steps", s.handleAppendSteps)
		r.Post("/drafts/{id}/finalize", s.handleFinalizeDraft)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type createDraftRequest struct {
	Seed *recipe.Seed `json:"seed,omitempty"`
}

type createDraftResponse struct {
	ID string `json:"id"`
}

type stepsRequest struct {
	Steps []recipe.Step `json:"steps"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if !s.decode(w, r, &rec, false) {
		return
	}
	m, err := rec.Build()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.Composed.WithLabelValues("compose").Inc()
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	m, err := req.Seed.NewMessage()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := s.drafts.Create(m)
	s.metrics.Drafts.Set(float64(s.drafts.Len()))
	logger.Log.Info("draft_created", zap.String("id", id))
	writeJSON(w, http.StatusCreated, createDraftResponse{ID: id})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	snap, err := s.drafts.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAppendSteps(w http.ResponseWriter, r *http.Request) {
	var req stepsRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	snap, err := s.drafts.Update(chi.URLParam(r, "id"), func(m *message.Message) error {
		return recipe.Apply(m, req.Steps)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFinalizeDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.drafts.Finalize(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.Composed.WithLabelValues("draft").Inc()
	s.metrics.Drafts.Set(float64(s.drafts.Len()))
	logger.Log.Info("draft_finalized", zap.String("id", id), zap.Int("blocks", len(snap.Blocks)))
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.drafts.Discard(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.Drafts.Set(float64(s.drafts.Len()))
	logger.Log.Info("draft_discarded", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into dst, rejecting unknown fields. An empty body
// is accepted only when allowEmpty is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	logger.Log.Debug("request_decode_failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: "bad_request"})
	return false
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, draft.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
		return
	}

	kind := recipe.Kind(err)
	if kind == "" {
		logger.Log.Error("request_failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
		return
	}

	s.metrics.ValidationFailures.WithLabelValues(kind).Inc()
	logger.Log.Info("compose_failed",
		zap.String("path", r.URL.Path),
		zap.String("kind", kind),
		zap.Error(err),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: kind})
}

// writeJSON encodes v before writing the header so an encoding failure is
// reported as a 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Log.Error("response_encode_failed", zap.Error(err))
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "internal error", Kind: "internal"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Log.Warn("response_write_failed", zap.Error(err))
	}
}
