package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lcavaliere/horizon/internal/config"
	"github.com/lcavaliere/horizon/internal/ingest"
	"github.com/lcavaliere/horizon/internal/observability"
	"github.com/lcavaliere/horizon/internal/schedule"
	"github.com/lcavaliere/horizon/internal/summarize"
)

// Ingestor runs the session-ingestion pipeline for one request.
type Ingestor interface {
	Run(ctx context.Context, req ingest.Request) (ingest.Result, error)
}

type Server struct {
	cfg        config.Config
	ingestor   Ingestor
	schedule   *schedule.Service
	summarizer summarize.Summarizer
	metrics    *observability.Metrics
	log        *zap.SugaredLogger
}

func New(cfg config.Config, ingestor Ingestor, sched *schedule.Service, summarizer summarize.Summarizer, metrics *observability.Metrics, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:        cfg,
		ingestor:   ingestor,
		schedule:   sched,
		summarizer: summarizer,
		metrics:    metrics,
		log:        log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/sessions/ingest", s.handleIngest)
	r.Get("/v1/schedule", s.handleSchedule)
	r.Post("/v1/summaries", s.handleSummarize)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingest.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.ingestor.Run(r.Context(), req)
	if err != nil {
		if ingest.KindOf(err) == ingest.KindValidation {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		// Error kinds stay in the logs; the caller only learns that the run
		// failed and must resubmit.
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to process recording")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	therapistID, ok := identityFromRequest(s.cfg.JWTSecret, r)
	if !ok {
		// Unauthenticated callers see an empty schedule, not an error.
		respondJSON(w, http.StatusOK, []schedule.Entry{})
		return
	}

	filter := schedule.Filter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("q"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		filter.Day = &day
	}

	entries, err := s.schedule.List(r.Context(), therapistID, filter)
	if err != nil {
		s.metrics.ScheduleReads.WithLabelValues("failure").Inc()
		s.log.Errorw("schedule read failed", "therapist_id", therapistID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load schedule")
		return
	}
	s.metrics.ScheduleReads.WithLabelValues("success").Inc()
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), req.Text)
	if err != nil {
		s.metrics.ProviderErrors.WithLabelValues("summary", "generate_failed").Inc()
		s.log.Errorw("summary generation failed", "error", err)
		respondError(w, http.StatusBadGateway, "summary_unavailable", "failed to generate summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
