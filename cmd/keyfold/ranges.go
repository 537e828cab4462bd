package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dshills/keyfold/internal/app"
	"github.com/dshills/keyfold/internal/renderer/gutter"
)

type rangesFlags struct {
	toggle []int
	json   bool
	stats  bool
}

func newRangesCmd(global *globalFlags) *cobra.Command {
	var flags rangesFlags

	cmd := &cobra.Command{
		Use:   "ranges FILE",
		Short: "Print the foldable regions of a file",
		Long: `Compute the folding regions of FILE once and print them.

Each --collapse LINE toggles the region starting on LINE, in order, before
the regions and the resulting hidden lines are printed.

Examples:
  # List regions
  keyfold ranges main.go

  # Collapse two regions and show what is hidden
  keyfold ranges main.go --collapse 3 --collapse 10

  # Use a Lua script to find regions
  keyfold ranges notes.md --lua ~/.config/keyfold/markdown.lua`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRanges(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), global, flags, args[0])
		},
	}

	cmd.Flags().IntSliceVar(&flags.toggle, "collapse", nil, "Toggle the region starting on LINE (repeatable)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "Print folding metrics after the regions")
	return cmd
}

func runRanges(ctx context.Context, out, errOut io.Writer, global *globalFlags, flags rangesFlags, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := global.settings()
	if err != nil {
		return err
	}
	log, closeLog, err := logger(cfg, errOut)
	if err != nil {
		return err
	}
	defer closeLog()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	rep, err := app.Ranges(ctx, app.Options{
		Config:        cfg,
		Path:          path,
		Logger:        log,
		MeterProvider: mp,
	}, flags.toggle)
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newRangesOutput(rep)); err != nil {
			return err
		}
	} else {
		printReport(out, rep)
	}

	if len(rep.Unmatched) > 0 {
		fmt.Fprintf(errOut, "no region starts on line(s) %v\n", rep.Unmatched)
	}

	if flags.stats {
		return printStats(ctx, out, reader)
	}
	return nil
}

type regionOutput struct {
	Start     int  `json:"start"`
	End       int  `json:"end"`
	Collapsed bool `json:"collapsed"`
}

type spanOutput struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type rangesOutput struct {
	Path    string         `json:"path"`
	Lines   int            `json:"lines"`
	Visible int            `json:"visible"`
	Regions []regionOutput `json:"regions"`
	Hidden  []spanOutput   `json:"hidden"`
}

func newRangesOutput(rep app.Report) rangesOutput {
	out := rangesOutput{
		Path:    rep.Path,
		Lines:   rep.Lines,
		Visible: rep.Visible,
		Regions: make([]regionOutput, 0, len(rep.Regions)),
		Hidden:  make([]spanOutput, 0, len(rep.Hidden)),
	}
	for _, r := range rep.Regions {
		out.Regions = append(out.Regions, regionOutput{Start: r.Range.StartLine, End: r.Range.EndLine, Collapsed: r.Collapsed})
	}
	for _, h := range rep.Hidden {
		out.Hidden = append(out.Hidden, spanOutput{Start: h.StartLine, End: h.EndLine})
	}
	return out
}

func printReport(out io.Writer, rep app.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tLINES\tSTATE")
	for _, r := range rep.Regions {
		state, mark := "expanded", gutter.GlyphExpanded
		if r.Collapsed {
			state, mark = "collapsed", gutter.GlyphCollapsed
		}
		fmt.Fprintf(w, "%c %s\t%d\t%s\n", mark,
			gutter.FormatLineRange(r.Range.StartLine, r.Range.EndLine),
			r.Range.EndLine-r.Range.StartLine+1, state)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d regions, %d of %d lines visible\n", len(rep.Regions), rep.Visible, rep.Lines)
	for _, h := range rep.Hidden {
		fmt.Fprintf(out, "hidden %s\n", gutter.FormatLineRange(h.StartLine, h.EndLine))
	}
}

// printStats writes the folding counters collected during the run.
func printStats(ctx context.Context, out io.Writer, reader *sdkmetric.ManualReader) error {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collecting metrics: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMETRIC\tATTRIBUTES\tVALUE")
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(w, "%s\t%s\t%d\n", m.Name, dp.Attributes.Encoded(attribute.DefaultEncoder()), dp.Value)
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(w, "%s\tcount\t%d\n", m.Name, dp.Count)
				}
			}
		}
	}
	return w.Flush()
}
