package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/pipeline"
)

type routeFlags struct {
	from, to    string
	roi         string
	roiFile     string
	batch       string
	geojson     string
	asJSON      bool
	interactive bool
	noCache     bool
	refresh     bool

	mode            string
	skeleton        string
	maxCandidates   int
	maxVisitedNodes int
	weighting       string
	pruneMetric     string
	workers         int
}

// apply copies flags the user set onto opts; config file values stay
// otherwise.
func (f *routeFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("mode") {
		opts.Mode = f.mode
	}
	if changed("skeleton") {
		opts.Skeleton = f.skeleton
	}
	if changed("max-candidates") {
		opts.MaxCandidates = f.maxCandidates
	}
	if changed("max-visited") {
		opts.MaxVisitedNodes = f.maxVisitedNodes
	}
	if changed("weighting") {
		opts.Weighting = f.weighting
	}
	if changed("prune-metric") {
		opts.PruneMetric = f.pruneMetric
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	opts.Refresh = f.refresh
}

// request builds the single request described by the flags.
func (f *routeFlags) request() (pipeline.RouteRequest, error) {
	var req pipeline.RouteRequest
	if f.from == "" || f.to == "" {
		return req, errors.New(errors.ErrCodeInvalidInput, "--from and --to are required")
	}
	from, err := parsePoint(f.from)
	if err != nil {
		return req, fmt.Errorf("--from: %w", err)
	}
	to, err := parsePoint(f.to)
	if err != nil {
		return req, fmt.Errorf("--to: %w", err)
	}
	req.Points = []geo.Point{from, to}

	switch {
	case f.roiFile != "":
		data, err := readGeoJSON(f.roiFile)
		if err != nil {
			return req, err
		}
		req.ROIGeoJSON = data
	case f.roi != "":
		ring, err := parseRing(f.roi)
		if err != nil {
			return req, fmt.Errorf("--roi: %w", err)
		}
		req.ROI = ring
	default:
		return req, errors.New(errors.ErrCodeInvalidInput, "one of --roi or --roi-file is required")
	}
	return req, nil
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var f routeFlags

	cmd := &cobra.Command{
		Use:   "route [graph.json]",
		Short: "Find a route that passes through a region of interest",
		Long: `Find a route that passes through a region of interest.

The region is a polygon given inline as LAT,LON vertices separated by
semicolons (--roi) or as a GeoJSON file (--roi-file). The route enters the
region at a boundary node, crosses it, and leaves at another boundary node;
the ranked alternatives trade time in the region against detour.

Use --batch with a JSON array of requests to route many trips at once.`,
		Example: `  regionroute route city.json --from 52.50,13.30 --to 52.50,13.50 \
    --roi "52.49,13.38;52.52,13.38;52.52,13.42;52.49,13.42" --geojson trip.geojson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions()
			if err != nil {
				return err
			}
			f.apply(cmd, &opts)
			opts.Logger = c.Logger
			if f.batch != "" {
				return c.runBatch(cmd.Context(), args[0], opts, f)
			}
			return c.runRoute(cmd.Context(), args[0], opts, f)
		},
	}

	cmd.Flags().StringVar(&f.from, "from", "", "start coordinate as LAT,LON")
	cmd.Flags().StringVar(&f.to, "to", "", "destination coordinate as LAT,LON")
	cmd.Flags().StringVar(&f.roi, "roi", "", "region vertices as LAT,LON;LAT,LON;...")
	cmd.Flags().StringVar(&f.roiFile, "roi-file", "", "region as a GeoJSON polygon file")
	cmd.Flags().StringVar(&f.batch, "batch", "", "JSON file with an array of requests")
	cmd.Flags().StringVar(&f.geojson, "geojson", "", "write the routes as GeoJSON to this file")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "choose among the alternatives interactively")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")

	cmd.Flags().StringVar(&f.mode, "mode", pipeline.DefaultMode, "skeleton mode: through, around")
	cmd.Flags().StringVar(&f.skeleton, "skeleton", pipeline.DefaultSkeleton, "skeleton kind: cells, roi")
	cmd.Flags().IntVarP(&f.maxCandidates, "max-candidates", "k", pipeline.DefaultMaxCandidates, "number of ranked alternatives")
	cmd.Flags().IntVar(&f.maxVisitedNodes, "max-visited", 0, "abort searches after this many nodes (0 = unlimited)")
	cmd.Flags().StringVar(&f.weighting, "weighting", pipeline.DefaultWeighting, "search cost: fastest, shortest")
	cmd.Flags().StringVar(&f.pruneMetric, "prune-metric", pipeline.DefaultPruneMetric, "domination metric: time, distance")
	cmd.Flags().IntVar(&f.workers, "workers", pipeline.DefaultWorkers, "concurrent requests in batch mode")

	cmd.MarkFlagsMutuallyExclusive("roi", "roi-file")
	cmd.MarkFlagsMutuallyExclusive("batch", "interactive")

	return cmd
}

// prepare loads input and builds the routing engine behind a spinner.
func (c *CLI) prepare(ctx context.Context, input string, opts pipeline.Options, noCache bool) (*pipeline.Runner, *pipeline.Engine, error) {
	runner, err := c.newRunner(ctx, noCache, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	g, err := runner.LoadGraph(ctx, input)
	if err != nil {
		runner.Close()
		return nil, nil, fmt.Errorf("load graph %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Decomposing graph...")
	spinner.Start()
	eng, err := runner.Prepare(ctx, g, opts)
	spinner.Stop()
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	return runner, eng, nil
}

func (c *CLI) runRoute(ctx context.Context, input string, opts pipeline.Options, f routeFlags) error {
	req, err := f.request()
	if err != nil {
		return err
	}

	runner, eng, err := c.prepare(ctx, input, opts, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Routing...")
	spinner.Start()
	res, err := runner.Route(ctx, eng, req, opts)
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if f.interactive && len(res.Alternatives) > 1 {
		final, err := tea.NewProgram(NewPickerModel(res), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if m, ok := final.(PickerModel); ok && m.Chosen >= 0 {
			c.Logger.Debug("picked alternative", "rank", m.Chosen+1)
			res = withChoice(res, m.Chosen)
		}
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printRoute(res)
	}

	if f.geojson != "" {
		data, err := res.GeoJSON()
		if err != nil {
			return fmt.Errorf("encode routes: %w", err)
		}
		if err := os.WriteFile(f.geojson, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", f.geojson, err)
		}
		if !f.asJSON {
			printFile(f.geojson)
		}
	}
	return nil
}

func (c *CLI) runBatch(ctx context.Context, input string, opts pipeline.Options, f routeFlags) error {
	data, err := os.ReadFile(f.batch)
	if err != nil {
		return fmt.Errorf("read batch %s: %w", f.batch, err)
	}
	var reqs []pipeline.RouteRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode batch %s", f.batch)
	}

	runner, eng, err := c.prepare(ctx, input, opts, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	results, err := runner.RouteBatch(ctx, eng, reqs, opts)
	if err != nil {
		return err
	}
	found := 0
	for _, r := range results {
		if r.Found {
			found++
		}
	}
	prog.done("routed batch", "requests", len(reqs), "found", found)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
