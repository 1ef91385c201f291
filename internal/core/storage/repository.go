package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/coyotlinden/opentsdb/internal/api/v1"
	"github.com/coyotlinden/opentsdb/internal/core/series"
)

// ErrDuplicate is returned when a datapoint with the same (metric, ts, tags)
// already exists.
var ErrDuplicate = errors.New("datapoint already exists")

// DataPointStore defines the interface for storing and retrieving samples.
type DataPointStore interface {
	// SaveDataPoint persists one sample; the value has already been
	// classified into its numeric domain by the caller.
	SaveDataPoint(ctx context.Context, dp *v1.DataPoint, value v1.ParsedValue) error

	// RetrieveRange fetches all samples of a metric with
	// start <= ts < end, across every tag set, ordered by timestamp.
	// The aggregation layer merges the tag series; storage does not.
	RetrieveRange(ctx context.Context, metric string, start, end time.Time) ([]series.Point, error)
}
