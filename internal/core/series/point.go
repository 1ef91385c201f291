// Package series provides point bucketing and downsampling over stored
// samples, one aggregation per output bucket.
package series

import "time"

// Point is one sample of a time series. Values keep their numeric domain:
// exact integers travel in IntValue, everything else in Value. A series is
// integer-domain only while every point in it is.
type Point struct {
	Timestamp time.Time
	Integer   bool
	IntValue  int64
	Value     float64
}

// IntPoint returns an integer-domain point.
func IntPoint(ts time.Time, v int64) Point {
	return Point{Timestamp: ts, Integer: true, IntValue: v}
}

// FloatPoint returns a floating-domain point.
func FloatPoint(ts time.Time, v float64) Point {
	return Point{Timestamp: ts, Value: v}
}

// Float returns the point's value as float64 regardless of domain.
func (p Point) Float() float64 {
	if p.Integer {
		return float64(p.IntValue)
	}
	return p.Value
}

// integerDomain reports whether every point carries an exact integer,
// i.e. the whole slice can be aggregated in the integer domain.
func integerDomain(points []Point) bool {
	for _, p := range points {
		if !p.Integer {
			return false
		}
	}
	return len(points) > 0
}
