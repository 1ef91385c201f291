package series

import (
	"testing"
	"time"

	"github.com/coyotlinden/opentsdb/internal/core/aggregate"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)

func mustSpec(t *testing.T, s string) DownsampleSpec {
	t.Helper()
	spec, err := ParseSpec(s, aggregate.NewRegistry())
	require.NoError(t, err)
	return spec
}

func TestParseSpec(t *testing.T) {
	reg := aggregate.NewRegistry()

	spec, err := ParseSpec("1m-avg", reg)
	require.NoError(t, err)
	require.Equal(t, time.Minute, spec.Interval)
	require.Equal(t, "avg", spec.Aggregator.Name())

	spec, err = ParseSpec("2d-esum", reg)
	require.NoError(t, err)
	require.Equal(t, 48*time.Hour, spec.Interval)
	require.Equal(t, "esum", spec.Aggregator.Name())

	_, err = ParseSpec("1m-median", reg)
	require.ErrorIs(t, err, aggregate.ErrNotFound)

	for _, bad := range []string{"", "avg", "1m", "0m-avg", "-avg", "xyz-avg"} {
		_, err := ParseSpec(bad, reg)
		require.Error(t, err, "spec %q", bad)
	}
}

func TestDownsample_IntegerBuckets(t *testing.T) {
	points := []Point{
		IntPoint(t0.Add(5*time.Second), 1),
		IntPoint(t0.Add(20*time.Second), 2),
		IntPoint(t0.Add(70*time.Second), 30),
		IntPoint(t0.Add(80*time.Second), 10),
	}

	out, err := Downsample(points, mustSpec(t, "1m-sum"))
	require.NoError(t, err)
	require.Equal(t, []Point{
		IntPoint(t0, 3),
		IntPoint(t0.Add(time.Minute), 40),
	}, out)
}

func TestDownsample_MixedDomainBucketIsFloat(t *testing.T) {
	points := []Point{
		IntPoint(t0, 1),
		FloatPoint(t0.Add(10*time.Second), 0.5),
	}

	out, err := Downsample(points, mustSpec(t, "1m-sum"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.False(t, out[0].Integer)
	require.InDelta(t, 1.5, out[0].Value, 1e-12)
}

func TestDownsample_InterpolatesInteriorGaps(t *testing.T) {
	// Buckets at +0m and +3m; the interpolation-aware avg fills +1m and +2m.
	points := []Point{
		IntPoint(t0, 10),
		IntPoint(t0.Add(3*time.Minute), 40),
	}

	out, err := Downsample(points, mustSpec(t, "1m-avg"))
	require.NoError(t, err)
	require.Equal(t, []Point{
		IntPoint(t0, 10),
		IntPoint(t0.Add(time.Minute), 20),
		IntPoint(t0.Add(2*time.Minute), 30),
		IntPoint(t0.Add(3*time.Minute), 40),
	}, out)
}

func TestDownsample_FractionalInterpolationIsFloat(t *testing.T) {
	points := []Point{
		IntPoint(t0, 0),
		IntPoint(t0.Add(2*time.Minute), 1),
	}

	out, err := Downsample(points, mustSpec(t, "1m-max"))
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.False(t, out[1].Integer)
	require.InDelta(t, 0.5, out[1].Value, 1e-12)
}

func TestDownsample_ExplicitSkipsGaps(t *testing.T) {
	points := []Point{
		IntPoint(t0, 10),
		IntPoint(t0.Add(3*time.Minute), 40),
	}

	out, err := Downsample(points, mustSpec(t, "1m-esum"))
	require.NoError(t, err)
	require.Equal(t, []Point{
		IntPoint(t0, 10),
		IntPoint(t0.Add(3*time.Minute), 40),
	}, out)
}

func TestDownsample_Empty(t *testing.T) {
	out, err := Downsample(nil, mustSpec(t, "1m-avg"))
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestDownsample_WelfordPerBucket(t *testing.T) {
	points := []Point{
		FloatPoint(t0, 1.0),
		FloatPoint(t0.Add(10*time.Second), 2.0),
		FloatPoint(t0.Add(20*time.Second), 3.0),
	}

	out, err := Downsample(points, mustSpec(t, "1m-dev"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.InDelta(t, 1.0, out[0].Value, 1e-12)
}
