package v1

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DataPoint is the atomic unit of ingestion: one sample of one metric.
type DataPoint struct {
	// Metric is the series name, e.g. "sys.cpu.user".
	Metric string `json:"metric"`

	// Timestamp is the sample time in milliseconds since the Unix epoch
	// (client-side clock).
	Timestamp int64 `json:"timestamp"`

	// Value is kept as the raw JSON number so the two numeric domains stay
	// distinguishable: "42" is an exact integer, "42.0" is floating point.
	// Binding it to float64 here would collapse large integers before the
	// domain is decided.
	Value json.Number `json:"value"`

	// Tags are optional series dimensions (e.g. host, region).
	Tags map[string]string `json:"tags,omitempty"`
}

// Validate ensures the datapoint has all required attributes and a
// parseable numeric value.
func (p *DataPoint) Validate() error {
	if p.Metric == "" {
		return fmt.Errorf("metric is required")
	}

	if p.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be a positive unix-ms value")
	}

	if p.Value == "" {
		return fmt.Errorf("value is required")
	}

	if _, err := decimal.NewFromString(p.Value.String()); err != nil {
		return fmt.Errorf("value %q is not numeric", p.Value)
	}

	return nil
}

// Time returns the sample time.
func (p *DataPoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// ParsedValue is a datapoint value classified into its numeric domain.
type ParsedValue struct {
	Integer  bool
	IntValue int64
	Float    float64
}

// ParseValue classifies the raw value. A value lands in the integer domain
// only when it is written without a fractional part and fits in an int64;
// the decimal parse keeps the classification exact where a float64 round
// trip would not (e.g. "9007199254740993").
func (p *DataPoint) ParseValue() (ParsedValue, error) {
	d, err := decimal.NewFromString(p.Value.String())
	if err != nil {
		return ParsedValue{}, fmt.Errorf("value %q is not numeric", p.Value)
	}

	if d.IsInteger() && !hasFractionalForm(p.Value.String()) {
		if i := d.IntPart(); decimal.NewFromInt(i).Equal(d) {
			return ParsedValue{Integer: true, IntValue: i}, nil
		}
	}

	return ParsedValue{Float: d.InexactFloat64()}, nil
}

// hasFractionalForm reports whether the literal was written in floating
// syntax ("1.0", "1e3"). Such values stay in the floating domain even when
// mathematically integral.
func hasFractionalForm(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E':
			return true
		}
	}
	return false
}
