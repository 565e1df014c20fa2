package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regionroute/pkg/pipeline"
)

type decomposeFlags struct {
	output     string
	outer      bool
	noCache    bool
	refresh    bool
	resolution int
}

// decomposeCommand creates the decompose command.
func (c *CLI) decomposeCommand() *cobra.Command {
	var f decomposeFlags

	cmd := &cobra.Command{
		Use:   "decompose [graph.json]",
		Short: "Split a road graph into visibility cells",
		Long: `Split a road graph into visibility cells.

Every face of the planar road network becomes a cell. The cells are cached
by graph fingerprint, so later 'route' and 'serve' runs on the same graph
start immediately. Use -o to export the cells as GeoJSON polygons.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("resolution") {
				opts.Resolution = f.resolution
			}
			opts.Refresh = f.refresh
			opts.Logger = c.Logger
			return c.runDecompose(cmd.Context(), args[0], opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write cells as GeoJSON to this file")
	cmd.Flags().BoolVar(&f.outer, "outer", false, "include outer faces in the GeoJSON export")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute cells even when cached")
	cmd.Flags().IntVar(&f.resolution, "resolution", pipeline.DefaultResolution, "grid index resolution per axis")

	return cmd
}

func (c *CLI) runDecompose(ctx context.Context, input string, opts pipeline.Options, f decomposeFlags) error {
	runner, err := c.newRunner(ctx, f.noCache, opts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	g, err := runner.LoadGraph(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Decomposing graph...")
	spinner.Start()
	eng, err := runner.Prepare(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Decomposition failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("prepared engine", "cells", len(eng.Cells))

	st := eng.Stats
	printSuccess("Decomposition complete")
	printStats(st.NodeCount, st.EdgeCount, len(eng.Cells), st.CellsCacheHit)
	printKeyValue("Faces", strconv.Itoa(st.Decompose.Faces))
	printKeyValue("Degenerate", strconv.Itoa(st.Decompose.DegenerateEdges))
	printKeyValue("Grid", fmt.Sprintf("%d×%d, %d occupied", eng.Index.Resolution(), eng.Index.Resolution(), eng.Index.Occupied()))
	printKeyValue("Fingerprint", eng.Fingerprint[:12])
	if st.Decompose.Resettled > 0 {
		printWarning("%d edge sides were traced twice; check the graph geometry", st.Decompose.Resettled)
	}

	if f.output != "" {
		data, err := pipeline.CellsGeoJSON(eng.Cells, f.outer)
		if err != nil {
			return fmt.Errorf("encode cells: %w", err)
		}
		if err := os.WriteFile(f.output, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", f.output, err)
		}
		printFile(f.output)
	}

	printNewline()
	printNextStep("Route", appName+" route "+input+" --from LAT,LON --to LAT,LON --roi LAT,LON;...")
	return nil
}
