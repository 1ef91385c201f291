package aggregate

// Int64Seq is a single-pass, forward-only producer of integer samples.
// Callers must check HasNext before calling Next; a drained sequence cannot
// be replayed and must not be consumed by more than one goroutine.
type Int64Seq interface {
	// HasNext reports whether at least one more value is available.
	// It does not advance the sequence.
	HasNext() bool

	// Next returns the next value and advances the sequence.
	Next() int64
}

// Float64Seq is the floating-point counterpart of Int64Seq.
type Float64Seq interface {
	HasNext() bool
	Next() float64
}

// Int64Slice adapts a slice to the Int64Seq contract.
// It does not copy its input; the caller must not mutate the slice while
// the sequence is being consumed.
type Int64Slice struct {
	values []int64
	pos    int
}

// NewInt64Slice returns a sequence over values.
func NewInt64Slice(values []int64) *Int64Slice {
	return &Int64Slice{values: values}
}

func (s *Int64Slice) HasNext() bool {
	return s.pos < len(s.values)
}

func (s *Int64Slice) Next() int64 {
	v := s.values[s.pos]
	s.pos++
	return v
}

// Float64Slice adapts a slice to the Float64Seq contract.
type Float64Slice struct {
	values []float64
	pos    int
}

// NewFloat64Slice returns a sequence over values.
func NewFloat64Slice(values []float64) *Float64Slice {
	return &Float64Slice{values: values}
}

func (s *Float64Slice) HasNext() bool {
	return s.pos < len(s.values)
}

func (s *Float64Slice) Next() float64 {
	v := s.values[s.pos]
	s.pos++
	return v
}
