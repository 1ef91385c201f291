// Package rollup loads downsampling policies: per-metric-prefix defaults
// applied to queries that do not name a downsample themselves.
package rollup

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coyotlinden/opentsdb/internal/core/aggregate"
	"github.com/coyotlinden/opentsdb/internal/core/series"
	"gopkg.in/yaml.v3"
)

// Policy binds a metric prefix to a default downsample. Policies are loaded
// once at startup from YAML files and fingerprinted for change detection.
type Policy struct {
	Name         string
	MetricPrefix string
	Downsample   series.DownsampleSpec
	// Raw is the original "interval-aggregator" string, kept for
	// introspection and logging.
	Raw string
	// Fingerprint is the SHA-256 of the raw YAML file, computed at load time.
	Fingerprint string
}

// rawPolicy is the on-disk YAML shape.
type rawPolicy struct {
	Name         string `yaml:"name"`
	MetricPrefix string `yaml:"metric_prefix"`
	Downsample   string `yaml:"downsample"` // e.g. "1m-avg"
}

// Policies is the set of loaded rollup policies. Longest-prefix wins when
// several policies match a metric.
type Policies struct {
	byName  map[string]Policy
	ordered []Policy // sorted by descending prefix length
}

// Load reads every *.yaml policy file in dir, validating each downsample
// against the registry. A missing directory is valid (zero policies
// configured).
func Load(dir string, reg *aggregate.Registry) (*Policies, error) {
	p := &Policies{byName: make(map[string]Policy)}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rollup policy dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rollup policy path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rollup policy dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading policy file %s: %w", path, err)
		}

		var raw rawPolicy
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
		}
		if raw.Name == "" {
			continue // skip empty / comment-only files
		}

		if raw.MetricPrefix == "" {
			return nil, fmt.Errorf("policy %q: metric_prefix must not be empty", raw.Name)
		}

		spec, err := series.ParseSpec(raw.Downsample, reg)
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", raw.Name, err)
		}

		if _, exists := p.byName[raw.Name]; exists {
			return nil, fmt.Errorf("policy %q: duplicate policy name (check multiple YAML files)", raw.Name)
		}

		p.byName[raw.Name] = Policy{
			Name:         raw.Name,
			MetricPrefix: raw.MetricPrefix,
			Downsample:   spec,
			Raw:          raw.Downsample,
			Fingerprint:  fmt.Sprintf("%x", sha256.Sum256(data)),
		}
	}

	for _, pol := range p.byName {
		p.ordered = append(p.ordered, pol)
	}
	sort.Slice(p.ordered, func(i, j int) bool {
		if len(p.ordered[i].MetricPrefix) != len(p.ordered[j].MetricPrefix) {
			return len(p.ordered[i].MetricPrefix) > len(p.ordered[j].MetricPrefix)
		}
		return p.ordered[i].Name < p.ordered[j].Name
	})

	return p, nil
}

// Get returns the policy with the given name, or an error if not found.
func (p *Policies) Get(name string) (Policy, error) {
	pol, ok := p.byName[name]
	if !ok {
		return Policy{}, fmt.Errorf("rollup policy %q not found", name)
	}
	return pol, nil
}

// Match returns the policy with the longest metric prefix matching metric,
// or false when no policy applies.
func (p *Policies) Match(metric string) (Policy, bool) {
	for _, pol := range p.ordered {
		if strings.HasPrefix(metric, pol.MetricPrefix) {
			return pol, true
		}
	}
	return Policy{}, false
}

// Len returns the number of loaded policies.
func (p *Policies) Len() int {
	return len(p.byName)
}
