package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/portfolio-builder/internal/config"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
	"github.com/kirillkom/portfolio-builder/internal/observability/metrics"
)

// Services groups the inbound ports the API is served from.
type Services struct {
	Ingestor ports.DocumentIngestor
	Catalog  ports.DocumentCatalog
	Viewer   ports.PortfolioViewer
	Exporter ports.PortfolioExporter
	Analyzer ports.DocumentAnalyzer
}

type domainRecorder interface {
	RecordUpload(accepted int, rejectionReasons []string)
	RecordClassified(category string)
	RecordExport(format string, size int, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordUpload(int, []string)      {}
func (noopRecorder) RecordClassified(string)         {}
func (noopRecorder) RecordExport(string, int, error) {}

type Router struct {
	services    Services
	contract    *apiContract
	httpMetrics *metrics.HTTPServerMetrics
	recorder    domainRecorder

	maxUploadBody int64

	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

// NewRouter builds the API router. httpMetrics may be nil.
func NewRouter(cfg config.Config, services Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	rt := &Router{
		services:         services,
		contract:         mustContract(),
		httpMetrics:      httpMetrics,
		recorder:         noopRecorder{},
		maxUploadBody:    uploadBodyLimit(cfg.UploadMaxFiles, cfg.UploadMaxFileBytes),
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIBackpressureMaxInFlight,
		backpressureWait: cfg.APIBackpressureWait,
	}
	if httpMetrics != nil {
		rt.recorder = httpMetrics
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.json", rt.contract.serve)
	if rt.httpMetrics != nil {
		mux.Handle("GET /metrics", rt.httpMetrics.Handler())
	}

	mux.HandleFunc("POST /v1/documents", rt.uploadDocuments)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("DELETE /v1/documents", rt.clearDocuments)
	mux.HandleFunc("DELETE /v1/documents/{document_id}", rt.removeDocument)
	mux.HandleFunc("PUT /v1/student", rt.setStudentName)

	mux.HandleFunc("GET /v1/portfolio", rt.getPortfolio)
	mux.HandleFunc("GET /v1/portfolio/export", rt.exportPortfolio)
	mux.HandleFunc("GET /portfolio", rt.portfolioPage)

	mux.HandleFunc("POST /v1/classify", rt.classify)
	mux.HandleFunc("POST /v1/describe", rt.describe)
	mux.HandleFunc("POST /v1/summarize", rt.summarize)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadBodyLimit leaves room for oversized files to reach the use case, which
// reports them as rejections instead of failing the batch.
func uploadBodyLimit(maxFiles int, maxFileBytes int64) int64 {
	if maxFiles <= 0 || maxFileBytes <= 0 {
		return 64 << 20
	}
	return 2*int64(maxFiles)*maxFileBytes + 1<<20
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
