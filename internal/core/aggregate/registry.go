package aggregate

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned by Registry.Get for a name that is not registered.
// The query layer surfaces it as a bad-request error; it is never defaulted
// to another aggregator.
var ErrNotFound = errors.New("no such aggregator")

// Registry is the fixed name-to-aggregator mapping used for dispatch.
// It is built once by NewRegistry and never mutates afterwards, so lookups
// need no locking. Lookups are exact: no partial matches, no case folding.
type Registry struct {
	byName map[string]Aggregator
}

// NewRegistry builds the registry over the closed set of nine aggregators.
// The bare name is the interpolation-aware variant; the e-prefixed name is
// the explicit (non-interpolating) counterpart. count is defined only as
// non-interpolating and min/max have no explicit counterpart, so callers
// must not assume the prefix exists for every statistic.
func NewRegistry() *Registry {
	aggs := []Aggregator{
		sumAgg{base{"sum", true}},
		sumAgg{base{"esum", false}},
		minAgg{base{"min", true}},
		maxAgg{base{"max", true}},
		avgAgg{base{"avg", true}},
		avgAgg{base{"eavg", false}},
		devAgg{base{"dev", true}},
		devAgg{base{"edev", false}},
		countAgg{base{"count", false}},
	}
	byName := make(map[string]Aggregator, len(aggs))
	for _, a := range aggs {
		byName[a.Name()] = a
	}
	return &Registry{byName: byName}
}

// Names returns all registered aggregator names, sorted for stable output
// in help text and validation messages.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the aggregator registered under name, or an error wrapping
// ErrNotFound.
func (r *Registry) Get(name string) (Aggregator, error) {
	agg, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return agg, nil
}
