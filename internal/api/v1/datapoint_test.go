package v1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataPoint_Validate(t *testing.T) {
	valid := DataPoint{
		Metric:    "sys.cpu.user",
		Timestamp: 1767225600000,
		Value:     json.Number("42"),
		Tags:      map[string]string{"host": "web01"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*DataPoint)
	}{
		{"missing metric", func(p *DataPoint) { p.Metric = "" }},
		{"zero timestamp", func(p *DataPoint) { p.Timestamp = 0 }},
		{"negative timestamp", func(p *DataPoint) { p.Timestamp = -5 }},
		{"missing value", func(p *DataPoint) { p.Value = "" }},
		{"non-numeric value", func(p *DataPoint) { p.Value = json.Number("fast") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			require.Error(t, p.Validate())
		})
	}
}

func TestDataPoint_ParseValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		integer bool
		wantInt int64
		wantFlt float64
	}{
		{name: "integer", raw: "42", integer: true, wantInt: 42},
		{name: "negative integer", raw: "-7", integer: true, wantInt: -7},
		// Exactly representable as int64 but not as float64; the decimal
		// parse must keep it in the integer domain undamaged.
		{name: "large integer", raw: "9007199254740993", integer: true, wantInt: 9007199254740993},
		{name: "float", raw: "1.5", wantFlt: 1.5},
		{name: "integral float literal stays floating", raw: "42.0", wantFlt: 42.0},
		{name: "exponent form stays floating", raw: "1e3", wantFlt: 1000.0},
		{name: "beyond int64 falls back to floating", raw: "92233720368547758080", wantFlt: 92233720368547758080.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DataPoint{Metric: "m", Timestamp: 1, Value: json.Number(tc.raw)}
			v, err := p.ParseValue()
			require.NoError(t, err)
			require.Equal(t, tc.integer, v.Integer)
			if tc.integer {
				require.Equal(t, tc.wantInt, v.IntValue)
			} else {
				require.InDelta(t, tc.wantFlt, v.Float, 1e-6)
			}
		})
	}

	p := DataPoint{Metric: "m", Timestamp: 1, Value: json.Number("not-a-number")}
	_, err := p.ParseValue()
	require.Error(t, err)
}
