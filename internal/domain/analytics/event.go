package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
)

// SearchEvent is the analytics record emitted once per completed search.
type SearchEvent struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId,omitempty"`
	Query          request.Search `json:"query"`
	ResultCount    int            `json:"resultCount"`
	TookMs         int64          `json:"tookMs"`
	Timestamp      time.Time      `json:"timestamp"`
	ExpandedRadius bool           `json:"expandedRadius"`
}

// NewSearchEvent stamps a fresh event id and timestamp.
func NewSearchEvent(
	userID string, q request.Search, resultCount int, took time.Duration, expanded bool, now time.Time,
) SearchEvent {
	return SearchEvent{
		ID:             uuid.NewString(),
		UserID:         userID,
		Query:          q,
		ResultCount:    resultCount,
		TookMs:         took.Milliseconds(),
		Timestamp:      now.UTC(),
		ExpandedRadius: expanded,
	}
}
