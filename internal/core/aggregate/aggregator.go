// Package aggregate implements the single-pass statistical aggregators used
// when merging or downsampling time series, and the name-keyed registry the
// query layer dispatches through.
//
// Aggregators are stateless and immutable; one instance serves any number of
// concurrent invocations. All per-call state lives on the stack, every
// variant runs in one forward pass over its sequence with O(1) auxiliary
// memory, and the hot path allocates nothing.
package aggregate

import (
	"errors"
	"math"
)

// ErrEmptySequence is returned when an aggregation entry point is invoked
// with a sequence that yields no values.
var ErrEmptySequence = errors.New("aggregate: empty sequence")

// Aggregator is a named single-pass computation over a numeric sequence.
// The two Run entry points are isomorphic; each consumes the whole sequence
// and returns one scalar in the same numeric domain.
type Aggregator interface {
	// Name returns the identifier the aggregator is registered under.
	Name() string

	// Interpolate reports whether this aggregator expects its input to have
	// had missing values interpolated upstream. The arithmetic is identical
	// either way; the flag is metadata for whoever prepares the sequence.
	Interpolate() bool

	// RunInt64 aggregates an integer sequence. Sums wrap per native int64
	// arithmetic; results that are mathematically fractional are truncated
	// toward zero.
	RunInt64(seq Int64Seq) (int64, error)

	// RunFloat64 aggregates a floating-point sequence.
	RunFloat64(seq Float64Seq) (float64, error)
}

// base carries the identity shared by every variant.
type base struct {
	name        string
	interpolate bool
}

func (b base) Name() string      { return b.name }
func (b base) Interpolate() bool { return b.interpolate }
func (b base) String() string    { return b.name }

type sumAgg struct{ base }

func (sumAgg) RunInt64(seq Int64Seq) (int64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	result := seq.Next()
	for seq.HasNext() {
		result += seq.Next()
	}
	return result, nil
}

func (sumAgg) RunFloat64(seq Float64Seq) (float64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	result := seq.Next()
	for seq.HasNext() {
		result += seq.Next()
	}
	return result, nil
}

type countAgg struct{ base }

func (countAgg) RunInt64(seq Int64Seq) (int64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	var n int64
	for seq.HasNext() {
		seq.Next()
		n++
	}
	return n, nil
}

func (countAgg) RunFloat64(seq Float64Seq) (float64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	var n int64
	for seq.HasNext() {
		seq.Next()
		n++
	}
	return float64(n), nil
}

type minAgg struct{ base }

// Ties keep the first-seen value (strict comparison).
func (minAgg) RunInt64(seq Int64Seq) (int64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	min := seq.Next()
	for seq.HasNext() {
		if v := seq.Next(); v < min {
			min = v
		}
	}
	return min, nil
}

func (minAgg) RunFloat64(seq Float64Seq) (float64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	min := seq.Next()
	for seq.HasNext() {
		if v := seq.Next(); v < min {
			min = v
		}
	}
	return min, nil
}

type maxAgg struct{ base }

func (maxAgg) RunInt64(seq Int64Seq) (int64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	max := seq.Next()
	for seq.HasNext() {
		if v := seq.Next(); v > max {
			max = v
		}
	}
	return max, nil
}

func (maxAgg) RunFloat64(seq Float64Seq) (float64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	max := seq.Next()
	for seq.HasNext() {
		if v := seq.Next(); v > max {
			max = v
		}
	}
	return max, nil
}

type avgAgg struct{ base }

// RunInt64 divides the exact running sum by the count using native integer
// division, i.e. the result truncates toward zero.
func (avgAgg) RunInt64(seq Int64Seq) (int64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	sum := seq.Next()
	n := int64(1)
	for seq.HasNext() {
		sum += seq.Next()
		n++
	}
	return sum / n, nil
}

func (avgAgg) RunFloat64(seq Float64Seq) (float64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	sum := seq.Next()
	n := int64(1)
	for seq.HasNext() {
		sum += seq.Next()
		n++
	}
	return sum / float64(n), nil
}

// devAgg computes the sample standard deviation with Welford's online
// method (Knuth TAOCP Vol 2, p. 232): the running mean and the accumulated
// squared-deviation term are updated per value, so no samples are buffered
// and the update avoids the catastrophic cancellation of the naive
// sum(x²)−(sum x)²/n formulation. A singleton sequence has no variance and
// yields exactly 0.
type devAgg struct{ base }

func (devAgg) RunInt64(seq Int64Seq) (int64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	return int64(welford(int64ToFloat{seq})), nil
}

func (devAgg) RunFloat64(seq Float64Seq) (float64, error) {
	if !seq.HasNext() {
		return 0, ErrEmptySequence
	}
	return welford(seq), nil
}

// welford consumes a non-empty sequence and returns sqrt(S/(n−1)), the
// Bessel-corrected sample standard deviation over its n values.
func welford(seq Float64Seq) float64 {
	mean := seq.Next()
	if !seq.HasNext() {
		return 0
	}
	n := int64(1)
	s := 0.0
	for seq.HasNext() {
		x := seq.Next()
		n++
		newMean := mean + (x-mean)/float64(n)
		s += (x - mean) * (x - newMean)
		mean = newMean
	}
	return math.Sqrt(s / float64(n-1))
}

// int64ToFloat views an integer sequence as floating point; the deviation
// intermediates are always computed in float64 regardless of domain.
type int64ToFloat struct {
	seq Int64Seq
}

func (a int64ToFloat) HasNext() bool { return a.seq.HasNext() }
func (a int64ToFloat) Next() float64 { return float64(a.seq.Next()) }
