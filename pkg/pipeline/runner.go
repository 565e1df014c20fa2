package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/regionroute/pkg/cache"
	"github.com/matzehuels/regionroute/pkg/gridindex"
	"github.com/matzehuels/regionroute/pkg/observability"
	"github.com/matzehuels/regionroute/pkg/regionroute"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
	"github.com/matzehuels/regionroute/pkg/vcell"
)

// cellsFormat versions the cached cell encoding.
const cellsFormat = 2

// indexMargin pads the graph bounds handed to the grid index, in degrees.
const indexMargin = 1e-6

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// LoadGraph imports a road graph from a JSON file.
func (r *Runner) LoadGraph(ctx context.Context, path string) (*roadgraph.Graph, error) {
	start := time.Now()
	g, err := roadgraph.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", time.Since(start))
	return g, nil
}

// cachedCells is the cache envelope for a decomposition.
type cachedCells struct {
	Stats vcell.Stats     `json:"stats"`
	Cells json.RawMessage `json:"cells"`
}

// DecomposeWithCacheInfo returns the cells of g, computing them only on a
// cache miss (or when opts.Refresh is set).
func (r *Runner) DecomposeWithCacheInfo(ctx context.Context, g *roadgraph.Graph, fingerprint string, opts Options) ([]*vcell.Cell, vcell.Stats, bool, error) {
	key := r.Keyer.CellsKey(fingerprint, cache.CellsKeyOpts{Format: cellsFormat})

	if !opts.Refresh {
		var env cachedCells
		if err := cache.GetJSON(ctx, r.Cache, key, &env); err == nil {
			if cells, err := vcell.UnmarshalCells(env.Cells, g); err == nil {
				observability.Cache().OnCacheHit(ctx, "cells")
				r.Logger.Debug("cells cache hit", "key", key, "cells", len(cells))
				return cells, env.Stats, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "cells")
	}

	hooks := observability.Decompose()
	hooks.OnDecomposeStart(ctx, g.NodeCount(), g.EdgeCount())
	start := time.Now()
	cells, stats, err := vcell.Decompose(g)
	hooks.OnDecomposeComplete(ctx, len(cells), time.Since(start), err)
	if err != nil {
		return nil, vcell.Stats{}, false, err
	}

	if data, err := vcell.MarshalCells(cells); err == nil {
		env := cachedCells{Stats: stats, Cells: data}
		if err := cache.SetJSON(ctx, r.Cache, key, env, cache.CellsTTL); err != nil {
			r.Logger.Warn("cache cells", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "cells", len(data))
		}
	}
	return cells, stats, false, nil
}

// Decompose is DecomposeWithCacheInfo without the cache information.
func (r *Runner) Decompose(ctx context.Context, g *roadgraph.Graph, opts Options) ([]*vcell.Cell, error) {
	cells, _, _, err := r.DecomposeWithCacheInfo(ctx, g, g.Fingerprint(), opts)
	return cells, err
}

// BuildIndex builds the grid index over cells, spanning the whole graph.
func (r *Runner) BuildIndex(g *roadgraph.Graph, cells []*vcell.Cell, opts Options) (*gridindex.Index, error) {
	return gridindex.New(cells,
		gridindex.WithResolution(opts.Resolution),
		gridindex.WithBounds(g.BBox().Pad(indexMargin)))
}

// Prepare decomposes g, indexes the cells and sets up a router.
func (r *Runner) Prepare(ctx context.Context, g *roadgraph.Graph, opts Options) (*Engine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	eng := &Engine{Graph: g, Fingerprint: g.Fingerprint()}
	eng.Stats.NodeCount, eng.Stats.EdgeCount = g.NodeCount(), g.EdgeCount()

	start := time.Now()
	cells, stats, hit, err := r.DecomposeWithCacheInfo(ctx, g, eng.Fingerprint, opts)
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	eng.Cells = cells
	eng.Stats.Decompose = stats
	eng.Stats.DecomposeTime = time.Since(start)
	eng.Stats.CellsCacheHit = hit
	r.Logger.Info("decomposed graph",
		"cells", len(cells),
		"faces", stats.Faces,
		"degenerate_edges", stats.DegenerateEdges,
		"cached", hit,
		"duration", eng.Stats.DecomposeTime)
	if stats.Resettled > 0 {
		r.Logger.Warn("edges traced twice; graph geometry may be inconsistent", "resettled", stats.Resettled)
	}

	start = time.Now()
	idx, err := r.BuildIndex(g, cells, opts)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	eng.Index = idx
	eng.Stats.IndexTime = time.Since(start)
	r.Logger.Debug("built grid index",
		"resolution", idx.Resolution(),
		"occupied", idx.Occupied(),
		"duration", eng.Stats.IndexTime)

	eng.Router = regionroute.NewRouter(g, route.NewDijkstra(g), idx, opts.RouterConfig())
	return eng, nil
}

func routeKeyOpts(eng *Engine, req RouteRequest, defaultMode string) cache.RouteKeyOpts {
	cfg := eng.Router.Config()
	k := cache.RouteKeyOpts{
		Mode:            req.Mode,
		Skeleton:        string(cfg.Skeleton),
		Resolution:      eng.Index.Resolution(),
		MaxCandidates:   cfg.MaxCandidates,
		MaxVisitedNodes: cfg.MaxVisitedNodes,
		Weighting:       string(cfg.Weighting),
		PruneMetric:     string(cfg.PruneMetric),
	}
	if k.Mode == "" {
		k.Mode = defaultMode
	}
	for _, p := range req.Points {
		k.Points = append(k.Points, [2]float64{p.Lat, p.Lon})
	}
	if roi, err := req.Polygon(); err == nil {
		for _, p := range roi.Points() {
			k.ROI = append(k.ROI, [2]float64{p.Lat, p.Lon})
		}
	}
	return k
}

// Route answers one request against eng. Results are cached per graph
// fingerprint and request. The router settings are those eng was prepared
// with; opts supplies the default mode, cache lifetime and refresh flag.
func (r *Runner) Route(ctx context.Context, eng *Engine, req RouteRequest, opts Options) (*RouteResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	rr, err := req.request(opts.Mode)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.RouteKey(eng.Fingerprint, routeKeyOpts(eng, req, opts.Mode))
	if !opts.Refresh {
		var cached RouteResult
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "route")
			cached.CacheHit = true
			return &cached, nil
		}
		observability.Cache().OnCacheMiss(ctx, "route")
	}

	hooks := observability.Routing()
	hooks.OnRouteStart(ctx, len(rr.Points))
	start := time.Now()
	resp, err := eng.Router.Route(ctx, rr)
	if err == nil {
		hooks.OnRouteComplete(ctx, resp.Found, resp.Stats.Candidates, time.Since(start), nil)
	} else {
		hooks.OnRouteComplete(ctx, false, 0, time.Since(start), err)
		return nil, err
	}

	res, err := NewRouteResult(eng.Graph, resp)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("routed",
		"found", res.Found,
		"entries", res.Stats.Entries,
		"exits", res.Stats.Exits,
		"candidates", res.Stats.Candidates,
		"duration", time.Since(start))

	if err := cache.SetJSON(ctx, r.Cache, key, res, opts.CacheTTL); err != nil {
		r.Logger.Warn("cache route", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "route", 0)
	}
	return res, nil
}

// RouteBatch routes reqs concurrently with at most opts.Workers in flight.
// Results keep the order of reqs; the first error cancels the rest.
func (r *Runner) RouteBatch(ctx context.Context, eng *Engine, reqs []RouteRequest, opts Options) ([]*RouteResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	out := make([]*RouteResult, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := r.Route(ctx, eng, req, opts)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
