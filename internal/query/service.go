package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coyotlinden/opentsdb/internal/core/aggregate"
	"github.com/coyotlinden/opentsdb/internal/core/series"
	"github.com/coyotlinden/opentsdb/internal/core/storage"
	"github.com/coyotlinden/opentsdb/internal/rollup"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidQuery marks request-shape problems the client can fix.
var ErrInvalidQuery = errors.New("invalid query")

// Service executes aggregation queries against the datapoint store.
type Service struct {
	store    storage.DataPointStore
	registry *aggregate.Registry
	policies *rollup.Policies
}

func NewService(store storage.DataPointStore, registry *aggregate.Registry, policies *rollup.Policies) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	if registry == nil {
		panic("query: registry must not be nil")
	}
	return &Service{
		store:    store,
		registry: registry,
		policies: policies,
	}
}

// Execute runs every sub-query concurrently and assembles the response in
// request order. An unknown aggregator name fails the whole request with an
// error wrapping aggregate.ErrNotFound; it is never defaulted.
func (s *Service) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	queryID := uuid.New().String()
	slog.Info("Executing query",
		"query_id", queryID,
		"start", req.Start,
		"end", req.End,
		"sub_queries", len(req.Queries))

	results := make([]Result, len(req.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range req.Queries {
		i, q := i, q
		g.Go(func() error {
			res, err := s.executeSub(gctx, req, q)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Response{
		QueryID: queryID,
		Start:   req.Start,
		End:     req.End,
		Results: results,
	}, nil
}

// validate checks the request shape and resolves every aggregator name
// before any storage work starts, so a bad name fails fast.
func (s *Service) validate(req Request) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidQuery)
	}
	if !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidQuery)
	}
	if len(req.Queries) == 0 {
		return fmt.Errorf("%w: at least one sub-query is required", ErrInvalidQuery)
	}

	for i, q := range req.Queries {
		if q.Metric == "" {
			return fmt.Errorf("%w: queries[%d]: metric is required", ErrInvalidQuery, i)
		}
		if q.Aggregator == "" {
			return fmt.Errorf("%w: queries[%d]: aggregator is required", ErrInvalidQuery, i)
		}
		if _, err := s.registry.Get(q.Aggregator); err != nil {
			return err
		}
		if q.Downsample != "" {
			if _, err := series.ParseSpec(q.Downsample, s.registry); err != nil {
				if errors.Is(err, aggregate.ErrNotFound) {
					return err
				}
				return fmt.Errorf("%w: queries[%d]: %v", ErrInvalidQuery, i, err)
			}
		}
	}
	return nil
}

// executeSub runs one sub-query: fetch the range, then either downsample
// per bucket or fold the whole range into a single value.
func (s *Service) executeSub(ctx context.Context, req Request, q SubQuery) (Result, error) {
	agg, err := s.registry.Get(q.Aggregator)
	if err != nil {
		return Result{}, err
	}

	spec, raw, ok, err := s.resolveDownsample(q)
	if err != nil {
		return Result{}, err
	}

	points, err := s.store.RetrieveRange(ctx, q.Metric, req.Start, req.End)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving %q: %w", q.Metric, err)
	}

	result := Result{
		Metric:     q.Metric,
		Aggregator: q.Aggregator,
		Downsample: raw,
		Points:     []ResultPoint{},
	}

	// An empty range is a normal outcome, not an error: the aggregators
	// themselves refuse empty sequences, so they are only invoked when at
	// least one sample exists.
	if len(points) == 0 {
		return result, nil
	}

	// Two stages: the downsample's aggregator reduces the samples inside
	// each bucket, then the sub-query's aggregator folds the bucket values
	// into one scalar. Without a downsample the second stage runs directly
	// over the raw samples.
	if ok {
		buckets, err := series.Downsample(points, spec)
		if err != nil {
			return Result{}, err
		}
		for _, p := range buckets {
			result.Points = append(result.Points, resultPoint(p))
		}
		points = buckets
	}

	folded, err := series.Aggregate(points, req.Start, agg)
	if err != nil {
		return Result{}, err
	}
	result.Value = resultPoint(folded).Value

	return result, nil
}

// resolveDownsample picks the sub-query's explicit downsample, falling back
// to the longest-prefix rollup policy for the metric. ok reports whether
// any downsample applies.
func (s *Service) resolveDownsample(q SubQuery) (spec series.DownsampleSpec, raw string, ok bool, err error) {
	if q.Downsample != "" {
		spec, err = series.ParseSpec(q.Downsample, s.registry)
		if err != nil {
			return series.DownsampleSpec{}, "", false, err
		}
		return spec, q.Downsample, true, nil
	}

	if s.policies != nil {
		if pol, matched := s.policies.Match(q.Metric); matched {
			return pol.Downsample, pol.Raw, true, nil
		}
	}
	return series.DownsampleSpec{}, "", false, nil
}
