package pipeline

import (
	stderrors "errors"
	"io"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/regionroute/pkg/cache"
	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/gridindex"
	"github.com/matzehuels/regionroute/pkg/regionroute"
	"github.com/matzehuels/regionroute/pkg/route"
	"github.com/matzehuels/regionroute/pkg/skeleton"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultResolution is the grid index resolution per axis.
	DefaultResolution = gridindex.DefaultResolution

	// DefaultSkeleton is the default skeleton kind.
	DefaultSkeleton = string(skeleton.KindCells)

	// DefaultMode is the default skeleton mode.
	DefaultMode = string(skeleton.Through)

	// DefaultMaxCandidates is the number of ranked alternatives returned.
	DefaultMaxCandidates = regionroute.DefaultMaxCandidates

	// DefaultWeighting is the default search cost.
	DefaultWeighting = string(route.Fastest)

	// DefaultPruneMetric is the default domination metric.
	DefaultPruneMetric = string(regionroute.MetricTime)

	// DefaultWorkers bounds concurrent requests in RouteBatch.
	DefaultWorkers = 4

	// DefaultCacheTTL is how long routing results stay cached.
	DefaultCacheTTL = cache.RouteTTL
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures decomposition, indexing and routing. It is read from
// TOML config files and from API requests.
type Options struct {
	Resolution      int           `json:"resolution,omitempty" toml:"resolution"`
	Skeleton        string        `json:"skeleton,omitempty" toml:"skeleton"`
	Mode            string        `json:"mode,omitempty" toml:"mode"`
	MaxCandidates   int           `json:"max_candidates,omitempty" toml:"max_candidates"`
	MaxVisitedNodes int           `json:"max_visited_nodes,omitempty" toml:"max_visited_nodes"` // 0 = unlimited
	Weighting       string        `json:"weighting,omitempty" toml:"weighting"`
	PruneMetric     string        `json:"prune_metric,omitempty" toml:"prune_metric"`
	Workers         int           `json:"workers,omitempty" toml:"workers"`
	CacheTTL        time.Duration `json:"cache_ttl,omitempty" toml:"cache_ttl"`
	RedisAddr       string        `json:"redis_addr,omitempty" toml:"redis_addr"`
	CacheNamespace  string        `json:"cache_namespace,omitempty" toml:"cache_namespace"` // key prefix for shared caches
	Refresh         bool          `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults fills unset fields and rejects unknown names.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.Skeleton == "" {
		o.Skeleton = DefaultSkeleton
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.MaxCandidates == 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	if o.Weighting == "" {
		o.Weighting = DefaultWeighting
	}
	if o.PruneMetric == "" {
		o.PruneMetric = DefaultPruneMetric
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	switch {
	case o.Resolution < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "resolution must be positive, got %d", o.Resolution)
	case o.MaxCandidates < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max_candidates must be positive, got %d", o.MaxCandidates)
	case o.MaxVisitedNodes < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max_visited_nodes must not be negative, got %d", o.MaxVisitedNodes)
	case o.Workers < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be positive, got %d", o.Workers)
	case o.CacheTTL < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must not be negative, got %s", o.CacheTTL)
	}
	if _, err := skeleton.ParseKind(o.Skeleton); err != nil {
		return err
	}
	if _, err := skeleton.ParseMode(o.Mode); err != nil {
		return err
	}
	if err := errors.ValidateOneOf("weighting", o.Weighting, string(route.Fastest), string(route.Shortest)); err != nil {
		return err
	}
	if _, err := regionroute.ParseMetric(o.PruneMetric); err != nil {
		return err
	}
	if o.Skeleton == string(skeleton.KindROI) && o.Mode == string(skeleton.Around) {
		return errors.New(errors.ErrCodeInvalidConfig, "mode %q needs skeleton %q", o.Mode, skeleton.KindCells)
	}
	o.validated = true
	return nil
}

// RouterConfig returns the router settings derived from o.
func (o *Options) RouterConfig() regionroute.Config {
	return regionroute.Config{
		Skeleton:        skeleton.Kind(o.Skeleton),
		MaxCandidates:   o.MaxCandidates,
		MaxVisitedNodes: o.MaxVisitedNodes,
		Weighting:       route.Weighting(o.Weighting),
		PruneMetric:     regionroute.Metric(o.PruneMetric),
	}
}

// LoadOptionsFile reads options from a TOML file. Unknown keys are an error
// so that typos do not silently fall back to defaults.
func LoadOptionsFile(path string) (Options, error) {
	var o Options
	if err := errors.ValidatePath(path); err != nil {
		return o, err
	}
	md, err := toml.DecodeFile(path, &o)
	if stderrors.Is(err, fs.ErrNotExist) {
		return o, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return o, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return o, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return o, nil
}
