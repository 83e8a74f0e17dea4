package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"clusterview/internal/chart"
	"clusterview/internal/domain"
	"clusterview/internal/export"
	"clusterview/internal/logging"
	"clusterview/internal/session"
	"clusterview/internal/viewer"
)

type analyzeOptions struct {
	K        int
	Features []string
	HTMLOut  string
	ImageOut string
	Serve    string
}

var analyzeOpts analyzeOptions

// serveConfigured is the value of a bare --serve flag.
const serveConfigured = "config"

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Cluster a CSV file and print the cluster summaries",
	Long: `analyze scans FILE, selects the requested features (the suggested ones when
--features is omitted), runs the clustering with k clusters and prints the
cluster cards. The chart can be exported to HTML, PNG or SVG and served
locally.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := analyzeOpts
		if !cmd.Flags().Changed("k") {
			opts.K = cfg.Analysis.DefaultK
		}
		if opts.Serve == serveConfigured {
			opts.Serve = cfg.Viewer.Addr
		}
		logger := logging.NewStderr(cfg.Log.Level)
		svc, store := newService(logger)

		v, err := runAnalyze(cmd.Context(), cmd.OutOrStdout(), svc, args[0], opts)
		if err != nil {
			return err
		}
		if err := exportView(cmd.OutOrStdout(), v, args[0], opts); err != nil {
			return err
		}
		if opts.Serve == "" {
			return nil
		}
		latest, ok := svc.Latest()
		if !ok {
			return errors.New("no analysis to serve")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Serving http://%s/analyses/%s (Ctrl+C to stop)\n", opts.Serve, latest.ID)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return viewer.NewServer(store, logger).ListenAndServe(ctx, opts.Serve)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.IntVarP(&analyzeOpts.K, "k", "k", 3, "number of clusters")
	f.StringSliceVar(&analyzeOpts.Features, "features", nil, "comma-separated feature columns (default: suggested columns)")
	f.StringVar(&analyzeOpts.HTMLOut, "html", "", "write the chart as an interactive HTML page")
	f.StringVar(&analyzeOpts.ImageOut, "png", "", "write the chart as an image (.png or .svg)")
	f.StringVar(&analyzeOpts.Serve, "serve", "", "serve the result after the run (bare flag uses viewer.addr)")
	f.Lookup("serve").NoOptDefVal = serveConfigured
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze drives one preview and analyze cycle and prints the result.
func runAnalyze(ctx context.Context, out io.Writer, backend domain.Backend, path string, opts analyzeOptions) (*chart.View, error) {
	u, err := session.OpenFile(path)
	if err != nil {
		return nil, err
	}
	state := session.New(cfg.Analysis.KMin, cfg.Analysis.KMax, opts.K)
	ctrl := session.NewController(backend, state, newNotifier(), logging.NewDiscard())

	if err := ctrl.HandleFile(ctx, u); err != nil {
		if msg := state.FeatureMessage(); msg != "" && state.FeatureStatus() == session.FeaturesError {
			return nil, fmt.Errorf("%s: %w", msg, err)
		}
		return nil, err
	}
	if state.FeatureStatus() == session.FeaturesEmpty {
		return nil, errors.New(session.MsgNoNumeric)
	}
	if len(opts.Features) > 0 {
		if err := selectFeatures(state, opts.Features); err != nil {
			return nil, err
		}
	}
	if state.K() != opts.K {
		fmt.Fprintf(out, "k=%d is outside %d..%d, using k=%d\n", opts.K, cfg.Analysis.KMin, cfg.Analysis.KMax, state.K())
	}

	if err := ctrl.Analyze(ctx); err != nil {
		return nil, err
	}
	v := state.View()
	fmt.Fprintf(out, "%s: k=%d features=%s\n\n", u.Name, state.K(), strings.Join(state.CheckedFeatures(), ","))
	printView(out, v)
	return v, nil
}

// selectFeatures checks exactly the named features.
func selectFeatures(state *session.Session, names []string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	for _, f := range state.Features() {
		if err := state.SetFeature(f.Name, want[f.Name]); err != nil {
			return err
		}
		delete(want, f.Name)
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, n)
		}
		return fmt.Errorf("%w: %s", session.ErrUnknownFeature, strings.Join(unknown, ", "))
	}
	return nil
}

func printView(out io.Writer, v *chart.View) {
	for _, s := range v.Stats {
		fmt.Fprintf(out, "%-10s n=%-5d centroid (%.2f, %.2f)\n", s.Name, s.Size, s.CentroidX, s.CentroidY)
	}
	if v.HasCards() {
		fmt.Fprintln(out)
		for _, c := range v.Cards {
			fmt.Fprint(out, c.String())
		}
	}
}

func exportView(out io.Writer, v *chart.View, title string, opts analyzeOptions) error {
	for _, path := range []string{opts.HTMLOut, opts.ImageOut} {
		if path == "" {
			continue
		}
		if err := export.SaveFigure(path, v.Figure, title); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}
