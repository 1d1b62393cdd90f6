package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/kafka"
)

const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSummaries       int64            `json:"total_summaries"`
	CacheHits            int64            `json:"cache_hits"`
	CacheMisses          int64            `json:"cache_misses"`
	DegenerateCount      int64            `json:"degenerate_count"`
	ErrorCount           int64            `json:"error_count"`
	AvgLatencyMs         float64          `json:"avg_latency_ms"`
	P50LatencyMs         int64            `json:"p50_latency_ms"`
	P95LatencyMs         int64            `json:"p95_latency_ms"`
	P99LatencyMs         int64            `json:"p99_latency_ms"`
	AvgTextBytes         float64          `json:"avg_text_bytes"`
	AvgSentencesReturned float64          `json:"avg_sentences_returned"`
	ClampedRequests      int64            `json:"clamped_requests"`
	TopKeywords          []KeywordCount   `json:"top_keywords"`
	BySource             map[string]int64 `json:"by_source"`
	SummariesPerMinute   float64          `json:"summaries_per_minute"`
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

// Aggregator folds SummarizeEvents into running statistics. Latency
// percentiles are computed over the most recent samples only.
type Aggregator struct {
	mu            sync.RWMutex
	total         int64
	cacheHits     int64
	degenerate    int64
	errors        int64
	clamped       int64
	textBytes     int64
	returned      int64
	latencies     []int64
	next          int
	keywordCounts map[string]int64
	bySource      map[string]int64
	startTime     time.Time
	now           func() time.Time
	logger        *slog.Logger
}

func NewAggregator() *Aggregator {
	a := &Aggregator{
		now:    time.Now,
		logger: slog.Default().With("component", "analytics-aggregator"),
	}
	a.reset()
	return a
}

// HandleEvent feeds decoded SummarizeEvents into agg. Undecodable messages
// come back as kafka.ErrSkip so the consumer commits past them.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return kafka.JSONHandler(func(_ context.Context, _ string, event SummarizeEvent) error {
		agg.Record(event)
		return nil
	})
}

// Track lets the aggregator stand in for a Collector in single-process
// setups.
func (a *Aggregator) Track(event SummarizeEvent) { a.Record(event) }

func (a *Aggregator) Record(event SummarizeEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if event.Source == "" {
		event.Source = "http"
	}
	a.bySource[event.Source]++
	if event.Type == EventError || event.Error != "" {
		a.errors++
		return
	}
	if event.CacheHit {
		a.cacheHits++
	}
	if event.Degenerate {
		a.degenerate++
	}
	if event.Requested > event.Returned && !event.Degenerate {
		a.clamped++
	}
	a.textBytes += int64(event.TextBytes)
	a.returned += int64(event.Returned)

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
	for _, kw := range event.Keywords {
		a.keywordCounts[kw]++
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	succeeded := a.total - a.errors
	stats := AggregatedStats{
		TotalSummaries:  a.total,
		CacheHits:       a.cacheHits,
		CacheMisses:     succeeded - a.cacheHits,
		DegenerateCount: a.degenerate,
		ErrorCount:      a.errors,
		ClampedRequests: a.clamped,
		BySource:        make(map[string]int64, len(a.bySource)),
	}
	for k, v := range a.bySource {
		stats.BySource[k] = v
	}
	if succeeded > 0 {
		stats.AvgTextBytes = float64(a.textBytes) / float64(succeeded)
		stats.AvgSentencesReturned = float64(a.returned) / float64(succeeded)
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopKeywords = topN(a.keywordCounts, 10)
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.SummariesPerMinute = float64(stats.TotalSummaries) / elapsed
	}
	return stats
}

// Reset clears all counters.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

func (a *Aggregator) reset() {
	a.total, a.cacheHits, a.degenerate, a.errors, a.clamped = 0, 0, 0, 0, 0
	a.textBytes, a.returned = 0, 0
	a.latencies = make([]int64, 0, 1024)
	a.next = 0
	a.keywordCounts = make(map[string]int64)
	a.bySource = make(map[string]int64)
	a.startTime = a.now()
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then keyword, so equal counts are reported
// deterministically.
func topN(counts map[string]int64, n int) []KeywordCount {
	result := make([]KeywordCount, 0, len(counts))
	for kw, count := range counts {
		result = append(result, KeywordCount{Keyword: kw, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Keyword < result[j].Keyword
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
