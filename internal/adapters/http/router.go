package httpadapter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/core/ports"
	"github.com/kirillkom/summarizer/internal/observability/metrics"
)

const serviceName = "summarizer-api"

type Options struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration

	// Metrics is optional; without it /metrics is not served.
	Metrics *metrics.HTTPServerMetrics
	// BreakerStates reports model-provider breaker states on /healthz.
	BreakerStates func() map[string]string
}

type Router struct {
	summarizer ports.SubmissionSummarizer
	exporters  []ports.SummaryExporter
	opts       Options
}

// NewRouter serves downloads through exporters in preference order: a request
// without a format gets the first exporter that supports its text.
func NewRouter(summarizer ports.SubmissionSummarizer, exporters []ports.SummaryExporter, opts Options) *Router {
	return &Router{
		summarizer: summarizer,
		exporters:  exporters,
		opts:       opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/api/summarize", rt.throttle(http.HandlerFunc(rt.summarize)))
	mux.Handle("/api/download-summary", rt.throttle(http.HandlerFunc(rt.downloadSummary)))
	if rt.opts.Metrics != nil {
		mux.Handle("/metrics", rt.opts.Metrics.Handler())
	}

	var handler http.Handler = recoverMiddleware(mux)
	handler = accessLogMiddleware(handler)
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) throttle(next http.Handler) http.Handler {
	handler := backpressureMiddleware(next, rt.opts.MaxInFlight, rt.opts.BackpressureWait, rt.rejected("backpressure"))
	return rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst, rt.rejected("rate_limit"))
}

func (rt *Router) rejected(reason string) func() {
	return func() {
		if rt.opts.Metrics != nil {
			rt.opts.Metrics.RecordThrottled(reason)
		}
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.opts.BreakerStates != nil {
		if states := rt.opts.BreakerStates(); len(states) > 0 {
			payload["breakers"] = states
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) summarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Invalid request method.")
		return
	}

	start := time.Now()
	req, cleanup, err := decodeSubmission(w, r)
	defer cleanup()
	if err == nil {
		var result domain.SummaryResult
		result, err = rt.summarizer.Summarize(r.Context(), req)
		if err == nil {
			rt.recordSubmission(req.Kind, nil, start)
			writeJSON(w, http.StatusOK, result)
			return
		}
	}

	rt.recordSubmission(req.Kind, err, start)
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "summarize_failed", "input_kind", req.Kind, "status", status, "error", err)
	}
	writeError(w, status, domain.UserMessage(err))
}

func (rt *Router) recordSubmission(kind domain.InputKind, err error, start time.Time) {
	if rt.opts.Metrics == nil {
		return
	}
	label := string(kind)
	if !kind.Valid() {
		label = "invalid"
	}
	rt.opts.Metrics.RecordSubmission(label, outcomeLabel(err), time.Since(start))
}

func (rt *Router) downloadSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Invalid request method.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, jsonBodyLimit)
	var summary, format string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			Summary string `json:"summary"`
			Format  string `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON data.")
			return
		}
		summary, format = payload.Summary, payload.Format
	} else {
		summary, format = r.FormValue("summary"), r.FormValue("format")
	}
	if strings.TrimSpace(summary) == "" {
		writeError(w, http.StatusBadRequest, "Summary is required.")
		return
	}

	exporter, message := rt.pickExporter(strings.ToLower(strings.TrimSpace(format)), summary)
	if exporter == nil {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	var doc bytes.Buffer
	if err := exporter.Export(summary, &doc); err != nil {
		slog.ErrorContext(r.Context(), "export_summary_failed", "format", exporter.Format(), "error", err)
		writeError(w, http.StatusInternalServerError, "Error generating the summary document.")
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes())
}

// pickExporter returns the exporter to use, or nil and a user-facing reason.
func (rt *Router) pickExporter(format, summary string) (ports.SummaryExporter, string) {
	if format == "" {
		for _, exp := range rt.exporters {
			if exp.Supports(summary) {
				return exp, ""
			}
		}
		return nil, "The summary cannot be exported in any available format."
	}

	var formats []string
	for _, exp := range rt.exporters {
		if exp.Format() != format {
			formats = append(formats, exp.Format())
			continue
		}
		if !exp.Supports(summary) {
			return nil, "The summary contains characters the " + format + " format cannot render."
		}
		return exp, ""
	}
	return nil, "Unsupported format. Use one of: " + strings.Join(formats, ", ") + "."
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
