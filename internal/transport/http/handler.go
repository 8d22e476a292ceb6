package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/metrics"
)

const maxBodyBytes = 64 << 10

// LinkService is the link generation surface the API exposes.
type LinkService interface {
	Generate(req domain.LinkRequest) (*domain.LinkSet, error)
	DesktopLink(req domain.DesktopLinkRequest) (string, bool, error)
	Banks() []string
}

// Handler wires HTTP endpoints to the link service.
type Handler struct {
	service  LinkService
	logger   *zap.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewHandler constructs a handler. A nil gatherer disables /metrics.
func NewHandler(service LinkService, logger *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger, metrics: m, gatherer: gatherer}
}

// NewRouter mounts all endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/deeplinks", h.handleGenerate)
		r.Post("/desktop-link", h.handleDesktopLink)
		r.Get("/banks", h.handleBanks)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGenerate handles POST /v1/deeplinks. The platform falls back to the
// caller's User-Agent when the body does not name one.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req domain.LinkRequest
	if !decode(w, r, &req) {
		return
	}
	platform, err := domain.ParsePlatform(string(req.Platform))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_platform", err.Error())
		return
	}
	req.Platform = platform
	req.UserAgent = r.UserAgent()

	set, err := h.service.Generate(req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.metrics.ObserveLinkSet(set.Bank, string(set.Platform), len(set.Links))
	if len(set.Warnings) > 0 {
		h.logger.Info("link set generated from malformed input",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("bank", set.Bank),
			zap.Int("warnings", len(set.Warnings)),
		)
	}
	writeJSON(w, http.StatusOK, set)
}

type desktopLinkResponse struct {
	Link      string `json:"link,omitempty"`
	Available bool   `json:"available"`
}

// handleDesktopLink handles POST /v1/desktop-link.
func (h *Handler) handleDesktopLink(w http.ResponseWriter, r *http.Request) {
	var req domain.DesktopLinkRequest
	if !decode(w, r, &req) {
		return
	}
	link, ok, err := h.service.DesktopLink(req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desktopLinkResponse{Link: link, Available: ok})
}

func (h *Handler) handleBanks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"banks": h.service.Banks()})
}

func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var unsupported *domain.UnsupportedBankError
	if errors.As(err, &unsupported) {
		h.metrics.IncUnsupportedBank()
		writeError(w, http.StatusBadRequest, "unsupported_bank", err.Error())
		return
	}
	h.logger.Error("link service failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}
