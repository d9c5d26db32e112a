package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/config"
	"github.com/kirillkom/lab-assistant/internal/contract"
	"github.com/kirillkom/lab-assistant/internal/core/ports"
	"github.com/kirillkom/lab-assistant/internal/core/usecase"
	"github.com/kirillkom/lab-assistant/internal/observability/metrics"
)

const serviceName = "lab-api"

// multipartOverhead is the allowance for form headers and boundaries on top
// of the upload size limit.
const multipartOverhead = 1 << 20

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 4 << 20

type Router struct {
	cfg        config.Config
	extractUC  ports.ExperimentExtractor
	generateUC ports.ReportGenerator
	contract   *contract.Contract
	metrics    *metrics.HTTPServerMetrics
	logger     *slog.Logger
}

type Option func(*Router)

// WithContract enables request validation and GET /openapi.json.
func WithContract(c *contract.Contract) Option {
	return func(rt *Router) { rt.contract = c }
}

// WithMetrics enables request metrics and GET /metrics.
func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func NewRouter(
	cfg config.Config,
	extractUC ports.ExperimentExtractor,
	generateUC ports.ReportGenerator,
	opts ...Option,
) *Router {
	rt := &Router{
		cfg:        cfg,
		extractUC:  extractUC,
		generateUC: generateUC,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /upload-file", rt.uploadFile)
	mux.HandleFunc("POST /generate", rt.generate)
	if rt.contract != nil {
		mux.HandleFunc("GET /openapi.json", rt.openapi)
	}
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = contractMiddleware(rt.contract, maxJSONBody, mux)
	handler = backpressureWithHook(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIOverloadWait, rt.rejectHook("overloaded"))
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.rejectHook("rate_limited"))
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = corsMiddleware(rt.cfg.CORSAllowedOrigins, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) rejectHook(reason string) func() {
	if rt.metrics == nil {
		return nil
	}
	return func() { rt.metrics.RecordRejection(serviceName, reason) }
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openapi(w http.ResponseWriter, _ *http.Request) {
	raw, err := rt.contract.JSON()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "contract unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	maxBytes := rt.cfg.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = usecase.DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "File too large.")
			return
		}
		writeDetail(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	experiments, err := rt.extractUC.Extract(r.Context(), fileHeader.Filename, file)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.logFailure(r, "extract_failed", status, err)
		writeDetail(w, status, extractDetail(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"experiments": experiments})
}

func (rt *Router) generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExperimentText string `json:"experiment_text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}

	report, err := rt.generateUC.Generate(r.Context(), req.ExperimentText)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.logFailure(r, "generate_failed", status, err)
		writeDetail(w, status, generateDetail(err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) logFailure(r *http.Request, event string, status int, err error) {
	attrs := []any{"request_id", requestIDFromContext(r.Context()), "status", status, "error", err}
	if status >= 500 {
		rt.logger.Error(event, attrs...)
		return
	}
	rt.logger.Warn(event, attrs...)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": strings.TrimSpace(detail)})
}
