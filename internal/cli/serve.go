package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regionroute/internal/server"
	"github.com/matzehuels/regionroute/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		timeout   time.Duration
		noCache   bool
		f         routeFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve region routing over HTTP",
		Long: `Serve region routing over HTTP.

The graph is decomposed once at startup. POST /v1/route accepts the same
request as 'route --batch' elements; see the server package for all
endpoints. Use --redis to share the result cache between instances.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions()
			if err != nil {
				return err
			}
			f.apply(cmd, &opts)
			if cmd.Flags().Changed("redis") {
				opts.RedisAddr = redisAddr
			}
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), args[0], addr, timeout, noCache, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the shared cache (host:port)")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "per-request routing timeout (0 = none)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.mode, "mode", pipeline.DefaultMode, "default skeleton mode: through, around")
	cmd.Flags().StringVar(&f.skeleton, "skeleton", pipeline.DefaultSkeleton, "skeleton kind: cells, roi")
	cmd.Flags().IntVarP(&f.maxCandidates, "max-candidates", "k", pipeline.DefaultMaxCandidates, "number of ranked alternatives")
	cmd.Flags().IntVar(&f.maxVisitedNodes, "max-visited", 0, "abort searches after this many nodes (0 = unlimited)")
	cmd.Flags().StringVar(&f.weighting, "weighting", pipeline.DefaultWeighting, "search cost: fastest, shortest")
	cmd.Flags().StringVar(&f.pruneMetric, "prune-metric", pipeline.DefaultPruneMetric, "domination metric: time, distance")
	cmd.Flags().IntVar(&f.workers, "workers", pipeline.DefaultWorkers, "concurrent requests per batch")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string, timeout time.Duration, noCache bool, opts pipeline.Options) error {
	runner, eng, err := c.prepare(ctx, input, opts, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	printSuccess("Serving %s", input)
	printStats(eng.Stats.NodeCount, eng.Stats.EdgeCount, len(eng.Cells), eng.Stats.CellsCacheHit)
	printKeyValue("Address", addr)
	if opts.RedisAddr != "" {
		printKeyValue("Cache", "redis "+opts.RedisAddr)
	}

	srv := server.New(runner, eng, opts, c.Logger, server.WithTimeout(timeout))
	return srv.ListenAndServe(ctx, addr)
}
