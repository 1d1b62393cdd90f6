package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kauebrandao/textsummarizer/internal/analytics"
	"github.com/kauebrandao/textsummarizer/internal/summarizer"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/cache"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/keywords"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/scorer"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/validator"
	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
	"github.com/kauebrandao/textsummarizer/pkg/logger"
	"github.com/kauebrandao/textsummarizer/pkg/metrics"
	"github.com/kauebrandao/textsummarizer/pkg/middleware"
)

type Summarizer interface {
	Summarize(ctx context.Context, text string, k int) (*summarizer.Result, error)
	SummarizeBatch(ctx context.Context, reqs []summarizer.Request) ([]summarizer.BatchItem, error)
	AnnotatorName() string
}

// SummarizeRequest uses pointers so that missing fields can be told apart
// from zero values.
type SummarizeRequest struct {
	Text         *string `json:"text"`
	NumSentences *int    `json:"num_sentences"`
}

type SummarizeResponse struct {
	Summary   string          `json:"summary"`
	Keywords  []string        `json:"keywords"`
	Sentences []scorer.Scored `json:"sentences,omitempty"`
}

type BatchRequest struct {
	Documents []SummarizeRequest `json:"documents"`
}

type BatchResult struct {
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Status   int      `json:"status"`
}

type Handler struct {
	engine    Summarizer
	cache     *cache.SummaryCache
	collector analytics.Tracker
	metrics   *metrics.Metrics
	limits    validator.Limits
	logger    *slog.Logger
}

// New creates the HTTP handler. cache, collector and m may be nil.
func New(engine Summarizer, summaryCache *cache.SummaryCache, collector analytics.Tracker, m *metrics.Metrics, limits validator.Limits) *Handler {
	return &Handler{
		engine:    engine,
		cache:     summaryCache,
		collector: collector,
		metrics:   m,
		limits:    limits,
		logger:    slog.Default().With("component", "summarize-handler"),
	}
}

// Summarize handles POST /summarize/. ?explain=true adds the selected
// sentences with their scores.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req SummarizeRequest
	if err := h.decode(w, r, h.bodyLimit(1), &req); err != nil {
		h.fail(w, err)
		return
	}
	if req.Text == nil || req.NumSentences == nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Campos obrigatórios: text, num_sentences.")
		return
	}
	text, k := *req.Text, *req.NumSentences
	if err := validator.Validate(text, k, h.limits); err != nil {
		h.observe("invalid", "", 0)
		h.fail(w, err)
		return
	}

	var (
		result   *summarizer.Result
		err      error
		cacheHit bool
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, text, k, func(ctx context.Context) (*summarizer.Result, error) {
			return h.engine.Summarize(ctx, text, k)
		})
		if h.metrics != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	} else {
		result, err = h.engine.Summarize(ctx, text, k)
	}
	latency := time.Since(start)

	if err != nil {
		log.Error("summarization failed", "text_bytes", len(text), "error", err)
		if h.metrics != nil && (errors.Is(err, apperrors.ErrAnnotationFailed) || errors.Is(err, apperrors.ErrUnavailable)) {
			h.metrics.AnnotatorFailures.WithLabelValues(h.engine.AnnotatorName()).Inc()
		}
		h.observe("error", cacheStatus(h.cache != nil, cacheHit), latency)
		h.track(ctx, analytics.SummarizeEvent{
			Type:      analytics.EventError,
			TextBytes: len(text),
			Requested: k,
			LatencyMs: latency.Milliseconds(),
			Error:     err.Error(),
		})
		h.processingError(w, err)
		return
	}

	outcome := "ok"
	if result.Degenerate {
		outcome = "degenerate"
	}
	h.observe(outcome, cacheStatus(h.cache != nil, cacheHit), latency)
	if h.metrics != nil {
		h.metrics.TextBytes.Observe(float64(len(text)))
		h.metrics.SentencesSelected.Observe(float64(len(result.Sentences)))
		h.metrics.KeywordsReturned.Observe(float64(keywordCount(result.Keywords)))
	}

	log.Info("summary created",
		"text_bytes", len(text),
		"sentences", result.SentenceCount,
		"requested", k,
		"returned", len(result.Sentences),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.track(ctx, eventFor(result, len(text), k, latency, cacheHit))

	resp := SummarizeResponse{Summary: result.Summary, Keywords: result.Keywords}
	if r.URL.Query().Get("explain") == "true" {
		resp.Sentences = result.Sentences
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Batch handles POST /api/v1/summarize/batch. Invalid documents get their
// own error entry; the others are summarized.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req BatchRequest
	if err := h.decode(w, r, h.bodyLimit(h.limits.MaxBatchSize), &req); err != nil {
		h.fail(w, err)
		return
	}
	if err := validator.ValidateBatchSize(len(req.Documents), h.limits); err != nil {
		h.fail(w, err)
		return
	}

	results := make([]BatchResult, len(req.Documents))
	var (
		pending []summarizer.Request
		slots   []int
	)
	for i, doc := range req.Documents {
		if doc.Text == nil || doc.NumSentences == nil {
			results[i] = BatchResult{Status: http.StatusUnprocessableEntity, Detail: "Campos obrigatórios: text, num_sentences."}
			continue
		}
		if err := validator.Validate(*doc.Text, *doc.NumSentences, h.limits); err != nil {
			results[i] = BatchResult{Status: apperrors.HTTPStatusCode(err), Detail: apperrors.Detail(err)}
			continue
		}
		pending = append(pending, summarizer.Request{Text: *doc.Text, NumSentences: *doc.NumSentences})
		slots = append(slots, i)
	}

	items, err := h.engine.SummarizeBatch(ctx, pending)
	if err != nil {
		logger.FromContext(ctx).Error("batch summarization failed", "error", err)
		h.processingError(w, err)
		return
	}
	for j, item := range items {
		i := slots[j]
		if item.Err != nil {
			results[i] = BatchResult{Status: http.StatusInternalServerError, Detail: validator.MsgProcessingFailure + item.Err.Error()}
			continue
		}
		results[i] = BatchResult{Status: http.StatusOK, Summary: item.Result.Summary, Keywords: item.Result.Keywords}
		h.track(ctx, eventFor(item.Result, len(pending[j].Text), pending[j].NumSentences, time.Since(start), false))
	}

	logger.FromContext(ctx).Info("batch summarized",
		"documents", len(req.Documents),
		"summarized", len(pending),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	stats := map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	}
	if n, err := h.cache.Entries(r.Context()); err == nil {
		stats["entries"] = n
	} else {
		h.logger.Warn("counting cache entries failed", "error", err)
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "O cache está desativado.")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Falha ao invalidar o cache.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

// decode reads a JSON body of at most limit bytes. Syntax and type errors
// become 422, oversized bodies 413.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.New(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, validator.MsgTextTooLarge)
	}
	if errors.Is(err, io.EOF) {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "Corpo da requisição ausente.")
	}
	return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "JSON inválido: %v", err)
}

// bodyLimit allows JSON escaping overhead on top of the text limit.
func (h *Handler) bodyLimit(docs int) int64 {
	if h.limits.MaxTextBytes <= 0 {
		return 0
	}
	if docs < 1 {
		docs = 1
	}
	return int64(docs) * (int64(h.limits.MaxTextBytes)*2 + 1024)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.writeError(w, apperrors.HTTPStatusCode(err), apperrors.Detail(err))
}

// processingError reports a failure inside the summarization pipeline. The
// status is always 500 whatever the cause; the cause goes in the detail.
func (h *Handler) processingError(w http.ResponseWriter, err error) {
	h.writeError(w, http.StatusInternalServerError, validator.MsgProcessingFailure+err.Error())
}

func (h *Handler) observe(outcome, cacheStatus string, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	h.metrics.SummariesTotal.WithLabelValues(outcome).Inc()
	if cacheStatus != "" {
		h.metrics.SummarizeLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}
}

func (h *Handler) track(ctx context.Context, event analytics.SummarizeEvent) {
	if h.collector == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	event.Source = "http"
	event.Timestamp = time.Now().UTC()
	h.collector.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

func eventFor(result *summarizer.Result, textBytes, requested int, latency time.Duration, cacheHit bool) analytics.SummarizeEvent {
	typ := analytics.EventSummarize
	switch {
	case result.Degenerate:
		typ = analytics.EventDegenerate
	case cacheHit:
		typ = analytics.EventCacheHit
	}
	ev := analytics.SummarizeEvent{
		Type:          typ,
		TextBytes:     textBytes,
		SentenceCount: result.SentenceCount,
		Requested:     requested,
		Returned:      len(result.Sentences),
		LatencyMs:     latency.Milliseconds(),
		CacheHit:      cacheHit,
		Degenerate:    result.Degenerate,
	}
	if n := keywordCount(result.Keywords); n > 0 {
		ev.KeywordCount = n
		ev.Keywords = result.Keywords
	}
	return ev
}

// keywordCount does not count the placeholder entry.
func keywordCount(kws []string) int {
	if len(kws) == 1 && kws[0] == keywords.NoKeywords {
		return 0
	}
	return len(kws)
}

func cacheStatus(enabled, hit bool) string {
	switch {
	case !enabled:
		return "disabled"
	case hit:
		return "hit"
	default:
		return "miss"
	}
}
