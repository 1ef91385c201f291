package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	require.Equal(t,
		[]string{"avg", "count", "dev", "eavg", "edev", "esum", "max", "min", "sum"},
		r.Names(),
	)
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.Names() {
		agg, err := r.Get(name)
		require.NoError(t, err)
		require.Equal(t, name, agg.Name())
	}

	// Exact match only: no case folding, no partial names, no invented
	// explicit variants.
	for _, name := range []string{"median", "", "SUM", "ecount", "su", "sum "} {
		_, err := r.Get(name)
		require.ErrorIs(t, err, ErrNotFound, "name %q", name)
	}
}

func TestRegistry_InterpolateFlags(t *testing.T) {
	r := NewRegistry()

	interpolating := map[string]bool{
		"sum": true, "min": true, "max": true, "avg": true, "dev": true,
		"esum": false, "eavg": false, "edev": false, "count": false,
	}
	for name, want := range interpolating {
		agg, err := r.Get(name)
		require.NoError(t, err)
		require.Equal(t, want, agg.Interpolate(), "aggregator %s", name)
	}
}

func TestRegistry_ExplicitVariantsShareArithmetic(t *testing.T) {
	r := NewRegistry()
	values := []int64{4, 8, 15, 16, 23, 42}

	for _, pair := range [][2]string{{"sum", "esum"}, {"avg", "eavg"}, {"dev", "edev"}} {
		require.Equal(t,
			runInt(t, r, pair[0], values),
			runInt(t, r, pair[1], values),
			"%s vs %s", pair[0], pair[1],
		)
	}
}
