package query

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/coyotlinden/opentsdb/internal/core/series"
)

// Request is the body of POST /api/v1/query: one time range shared by one
// or more sub-queries.
type Request struct {
	Start   time.Time  `json:"start"`
	End     time.Time  `json:"end"`
	Queries []SubQuery `json:"queries"`
}

// SubQuery names a metric, the aggregator to run, and optionally a
// downsample of the form "interval-aggregator" (e.g. "1m-avg"). When
// Downsample is empty, a matching rollup policy supplies the default; with
// no policy either, the aggregator folds the whole range into one value.
type SubQuery struct {
	Metric     string `json:"metric"`
	Aggregator string `json:"aggregator"`
	Downsample string `json:"downsample,omitempty"`
}

// ResultPoint is one aggregated output sample. The value is emitted as a
// raw JSON number so the integer and floating domains survive the wire:
// 10/4 in the integer domain is 2, not 2.5.
type ResultPoint struct {
	Timestamp int64       `json:"timestamp"`
	Value     json.Number `json:"value"`
}

// Result is the outcome of one sub-query. Points carries the downsampled
// bucket series when a downsample applies; Value is the sub-query
// aggregator's single scalar over the bucket values (or over the raw
// samples when nothing was downsampled). Value is absent when the range
// held no samples.
type Result struct {
	Metric     string        `json:"metric"`
	Aggregator string        `json:"aggregator"`
	Downsample string        `json:"downsample,omitempty"`
	Value      json.Number   `json:"value,omitempty"`
	Points     []ResultPoint `json:"points"`
}

// Response is the body returned by POST /api/v1/query.
type Response struct {
	QueryID string    `json:"query_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Results []Result  `json:"results"`
}

// resultPoint converts an aggregated series point to the wire shape.
func resultPoint(p series.Point) ResultPoint {
	var v json.Number
	if p.Integer {
		v = json.Number(strconv.FormatInt(p.IntValue, 10))
	} else {
		v = json.Number(strconv.FormatFloat(p.Value, 'g', -1, 64))
	}
	return ResultPoint{Timestamp: p.Timestamp.UnixMilli(), Value: v}
}
