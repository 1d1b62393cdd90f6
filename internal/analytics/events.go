package analytics

import "time"

type EventType string

const (
	EventSummarize  EventType = "summarize"
	EventCacheHit   EventType = "cache_hit"
	EventDegenerate EventType = "degenerate"
	EventError      EventType = "error"
)

// SummarizeEvent describes one summarize request. Text content is never
// included, only its size and the extracted keywords.
type SummarizeEvent struct {
	Type          EventType `json:"type"`
	RequestID     string    `json:"request_id"`
	Source        string    `json:"source"`
	TextBytes     int       `json:"text_bytes"`
	SentenceCount int       `json:"sentence_count"`
	Requested     int       `json:"requested"`
	Returned      int       `json:"returned"`
	KeywordCount  int       `json:"keyword_count"`
	Keywords      []string  `json:"keywords,omitempty"`
	LatencyMs     int64     `json:"latency_ms"`
	CacheHit      bool      `json:"cache_hit"`
	Degenerate    bool      `json:"degenerate"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Tracker accepts events without blocking the caller.
type Tracker interface {
	Track(event SummarizeEvent)
}
