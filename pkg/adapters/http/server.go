// Package http exposes the walkout engine over a REST surface: section
// submissions, the confirmation protocol, field definitions and the
// external lookups the forms trigger.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claritydental/walkout/internal/logging"
	"github.com/claritydental/walkout/internal/runtime"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/observability"
	"github.com/claritydental/walkout/pkg/ports"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Engine is the submission surface the server drives.
type Engine interface {
	BeginSubmission(ctx context.Context, in runtime.SubmissionInput) (*runtime.SubmissionResult, *runtime.PendingConfirmation, error)
	ResumeSubmission(ctx context.Context, pendingID string, answer domain.YesNo) (*runtime.SubmissionResult, error)
	CancelSubmission(pendingID string) error
	Walkout(ctx context.Context, appointmentID string) (*domain.Walkout, error)
}

// Config wires the server's collaborators. Engine and Fields are
// required; the rest degrade to 404/disabled endpoints when absent.
type Config struct {
	Engine   Engine
	Fields   ports.FieldDefinitionSource
	Rules    ports.RuleEngineClient
	Analyzer ports.NoteAnalyzer
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Server routes walkout requests to the engine.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(enableCORS)
	if cfg.Metrics != nil {
		r.Use(metricsMiddleware(cfg.Metrics))
	}

	r.Get("/health", s.health)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openAPISpec)
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/fields", s.listFields)
	r.Get("/walkouts/{appointmentID}", s.getWalkout)
	r.Post("/walkouts/{appointmentID}/{section}", s.submit)
	r.Post("/confirmations/{pendingID}", s.resume)
	r.Delete("/confirmations/{pendingID}", s.cancel)
	r.Post("/lookup", s.lookup)
	r.Post("/analyze", s.analyze)

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(route, strconv.Itoa(rec.code), time.Since(start).Seconds())
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFields(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	sets, err := s.cfg.Fields.List(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) getWalkout(w http.ResponseWriter, r *http.Request) {
	walkout, err := s.cfg.Engine.Walkout(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, walkout)
}

type submitRequest struct {
	Fields               domain.FieldSet `json:"fields"`
	Remarks              string          `json:"remarks,omitempty"`
	Note                 string          `json:"note,omitempty"`
	SubmittedBy          string          `json:"submittedBy,omitempty"`
	LastFetchedLookupKey string          `json:"lastFetchedLookupKey,omitempty"`
}

type pendingResponse struct {
	PendingID string                     `json:"pendingId"`
	Prompt    runtime.ConfirmationPrompt `json:"prompt"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	in := runtime.SubmissionInput{
		AppointmentID:        chi.URLParam(r, "appointmentID"),
		Section:              domain.Section(chi.URLParam(r, "section")),
		Fields:               body.Fields,
		Remarks:              body.Remarks,
		Note:                 body.Note,
		SubmittedBy:          body.SubmittedBy,
		LastFetchedLookupKey: body.LastFetchedLookupKey,
	}
	if !in.Section.Valid() {
		http.Error(w, "unknown section", http.StatusBadRequest)
		return
	}

	res, pending, err := s.cfg.Engine.BeginSubmission(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if pending != nil {
		// The submission is parked on the confirmation dialog.
		writeJSON(w, http.StatusAccepted, pendingResponse{PendingID: pending.ID, Prompt: pending.Prompt})
		return
	}
	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, res)
}

type resumeRequest struct {
	Answer domain.YesNo `json:"answer"`
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	var body resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Answer != domain.Yes && body.Answer != domain.No {
		http.Error(w, "answer must be Yes or No", http.StatusBadRequest)
		return
	}

	res, err := s.cfg.Engine.ResumeSubmission(r.Context(), chi.URLParam(r, "pendingID"), body.Answer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Engine.CancelSubmission(chi.URLParam(r, "pendingID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type lookupRequest struct {
	PatientID string `json:"patientId"`
	UniqueID  string `json:"uniqueId"`
	Office    string `json:"office"`
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Rules == nil {
		http.Error(w, "rule engine not configured", http.StatusNotFound)
		return
	}
	var body lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	messages, err := s.cfg.Rules.Query(r.Context(), body.PatientID, body.UniqueID, body.Office)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uniqueId": body.UniqueID,
		"messages": messages,
	})
}

type analyzeRequest struct {
	ProviderNotes  string `json:"providerNotes"`
	HygienistNotes string `json:"hygienistNotes"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyzer == nil {
		http.Error(w, "note analyzer not configured", http.StatusNotFound)
		return
	}
	var body analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	findings, err := s.cfg.Analyzer.Analyze(r.Context(), body.ProviderNotes, body.HygienistNotes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, findings)
}

type errorResponse struct {
	Error  string                    `json:"error"`
	Fields domain.ValidationErrorMap `json:"fields,omitempty"`
}

// writeError maps domain failures to HTTP status codes. Validation
// failures carry the per-field violation map so the form can mark the
// offending inputs.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var conflict *domain.ConflictError
	var rate *domain.RateLimitError
	var network *domain.NetworkError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrWalkoutNotFound),
		errors.Is(err, domain.ErrAppointmentNotFound),
		errors.Is(err, domain.ErrSubmissionCancelled):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &rate):
		w.Header().Set("Retry-After", rate.RetryAfter.UTC().Format(http.TimeFormat))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
	case errors.As(err, &network):
		s.logger.Error("upstream failure", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
