package analytics

import (
	"context"

	domanalytics "github.com/kailas-cloud/marketsearch/internal/domain/analytics"
)

// Sink delivers a search event to an analytics backend.
type Sink interface {
	Record(ctx context.Context, ev domanalytics.SearchEvent) error
	Name() string
}
