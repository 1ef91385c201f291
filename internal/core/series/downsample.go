package series

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/coyotlinden/opentsdb/internal/core/aggregate"
)

// DownsampleSpec is a parsed "interval-aggregator" downsampling request,
// e.g. "1m-avg" or "1h-esum".
type DownsampleSpec struct {
	Interval   time.Duration
	Aggregator aggregate.Aggregator
}

// ParseSpec parses a downsampling request of the form "interval-aggregator"
// and resolves the aggregator against the registry. Unknown aggregator names
// surface the registry's not-found error unchanged so callers can map it to
// a bad-request response.
func ParseSpec(s string, reg *aggregate.Registry) (DownsampleSpec, error) {
	interval, name, ok := strings.Cut(s, "-")
	if !ok {
		return DownsampleSpec{}, fmt.Errorf("invalid downsample %q: want \"interval-aggregator\"", s)
	}

	d, err := ParseInterval(interval)
	if err != nil {
		return DownsampleSpec{}, fmt.Errorf("invalid downsample %q: %w", s, err)
	}

	agg, err := reg.Get(name)
	if err != nil {
		return DownsampleSpec{}, err
	}

	return DownsampleSpec{Interval: d, Aggregator: agg}, nil
}

// ParseInterval parses a bucket interval. Supports Go duration syntax
// (e.g. "10s", "1m", "1h") plus "Xd" for days.
func ParseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("interval must not be empty")
	}

	// "d" (days) is not a unit time.ParseDuration knows.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("invalid interval %q: %w", s, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("interval must be positive, got %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %q", s)
	}
	return d, nil
}

// BucketFor truncates a timestamp to its bucket boundary.
// Example: BucketFor(10:35:42, 1m) → 10:35:00.
func BucketFor(t time.Time, interval time.Duration) time.Time {
	return t.Truncate(interval)
}

// Downsample reduces time-ordered points to one aggregated point per
// bucket. Each bucket's samples are consumed as a single-pass sequence in
// the domain of the bucket: integer when every sample in the bucket is an
// exact integer, floating otherwise.
//
// Interpolation-aware aggregators get interior empty buckets filled by
// linear interpolation between the two nearest aggregated neighbours;
// explicit aggregators skip empty buckets entirely. Gaps before the first
// or after the last sample are never extrapolated.
func Downsample(points []Point, spec DownsampleSpec) ([]Point, error) {
	if len(points) == 0 {
		return nil, nil
	}

	out := make([]Point, 0, 8)
	for start := 0; start < len(points); {
		bucket := BucketFor(points[start].Timestamp, spec.Interval)
		end := start + 1
		for end < len(points) && BucketFor(points[end].Timestamp, spec.Interval).Equal(bucket) {
			end++
		}

		p, err := aggregateBucket(points[start:end], bucket, spec.Aggregator)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		start = end
	}

	if spec.Aggregator.Interpolate() {
		out = fillGaps(out, spec.Interval)
	}
	return out, nil
}

// Aggregate folds all points into a single aggregated point stamped at ts.
// Used for queries that request one scalar over a whole range instead of
// per-bucket downsampling.
func Aggregate(points []Point, ts time.Time, agg aggregate.Aggregator) (Point, error) {
	return aggregateBucket(points, ts, agg)
}

// aggregateBucket runs one aggregation over the samples of a single bucket.
func aggregateBucket(points []Point, bucket time.Time, agg aggregate.Aggregator) (Point, error) {
	if integerDomain(points) {
		values := make([]int64, len(points))
		for i, p := range points {
			values[i] = p.IntValue
		}
		v, err := agg.RunInt64(aggregate.NewInt64Slice(values))
		if err != nil {
			return Point{}, fmt.Errorf("downsample bucket %s: %w", bucket.UTC().Format(time.RFC3339), err)
		}
		return IntPoint(bucket, v), nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Float()
	}
	v, err := agg.RunFloat64(aggregate.NewFloat64Slice(values))
	if err != nil {
		return Point{}, fmt.Errorf("downsample bucket %s: %w", bucket.UTC().Format(time.RFC3339), err)
	}
	return FloatPoint(bucket, v), nil
}

// fillGaps linearly interpolates aggregated values for interior buckets
// that had no samples. An interpolated value stays in the integer domain
// only when both endpoints are integers and the interpolation is exact.
func fillGaps(points []Point, interval time.Duration) []Point {
	if len(points) < 2 {
		return points
	}

	out := make([]Point, 0, len(points))
	for i := 0; i < len(points)-1; i++ {
		prev, next := points[i], points[i+1]
		out = append(out, prev)

		gap := int(next.Timestamp.Sub(prev.Timestamp) / interval)
		for step := 1; step < gap; step++ {
			frac := float64(step) / float64(gap)
			v := prev.Float() + (next.Float()-prev.Float())*frac
			ts := prev.Timestamp.Add(time.Duration(step) * interval)
			if prev.Integer && next.Integer && v == math.Trunc(v) {
				out = append(out, IntPoint(ts, int64(v)))
			} else {
				out = append(out, FloatPoint(ts, v))
			}
		}
	}
	return append(out, points[len(points)-1])
}
