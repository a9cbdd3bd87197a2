package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/config"
	"github.com/dblueman/heatcanvas/internal/grid"
	"github.com/dblueman/heatcanvas/internal/heatmap"
	"github.com/dblueman/heatcanvas/internal/logging"
	"github.com/dblueman/heatcanvas/internal/metrics"
	"github.com/dblueman/heatcanvas/internal/tui"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	opts       config.Options
	log        *zap.Logger
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	stdin      io.Reader
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "heatcanvas",
		Short: "Render gridded z-data as heatmaps",
		Long: "heatcanvas rasterizes one or more {x, y, z} datasets into a heatmap image,\n" +
			"either cell by cell or as filled contours, and lets you explore them in the terminal.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	config.RegisterFlags(pf)

	cmd.AddCommand(newRenderCommand(a), newViewCommand(a), newInfoCommand(a))
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	a.stdin = cmd.InOrStdin()
	boot, err := logging.New(logging.Config{Level: "warn"})
	if err != nil {
		return err
	}
	a.opts, err = config.Load(a.configPath, cmd.Flags(), boot)
	if err != nil {
		return err
	}
	a.log, err = logging.New(a.opts.Log)
	if err != nil {
		return err
	}
	a.registry = prometheus.NewRegistry()
	a.metrics, err = metrics.New(a.registry)
	return err
}

func (a *app) session(args []string, opts config.Options) (*heatmap.Session, error) {
	grids, err := loadDatasets(args, a.stdin)
	if err != nil {
		return nil, err
	}
	return heatmap.NewSession(grids, opts, a.log, heatmap.WithMetrics(a.metrics))
}

func newRenderCommand(a *app) *cobra.Command {
	var (
		output      string
		surfaceOnly bool
		figWidth    float64
		figHeight   float64
	)
	cmd := &cobra.Command{
		Use:   "render [dataset.json ...]",
		Short: "Render datasets to an image file",
		Long: "Render reads datasets from the given files, or stdin, and writes a figure with axes,\n" +
			"title and colour bar in the format named by the output extension (png, svg, pdf, ...).\n" +
			"With --surface-only the bare heatmap raster is written as PNG.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(args, a.opts)
			if err != nil {
				return err
			}
			defer s.Close()
			s.Render()

			if surfaceOnly {
				err = surfacePNG(s, output)
			} else {
				err = NewFigure(s, a.log).Save(vg.Length(figWidth)*vg.Centimeter, vg.Length(figHeight)*vg.Centimeter, output)
			}
			if err != nil {
				return err
			}
			a.log.Info("wrote image", zap.String("file", output), zap.String("session", s.ID().String()))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "heatmap.png", "output file")
	f.BoolVar(&surfaceOnly, "surface-only", false, "write only the heatmap raster as PNG")
	f.Float64Var(&figWidth, "fig-width", 15, "figure width in centimetres")
	f.Float64Var(&figHeight, "fig-height", 15, "figure height in centimetres")
	return cmd
}

func newViewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [dataset.json ...]",
		Short: "Explore datasets in the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(args, a.opts)
			if err != nil {
				return err
			}
			rebuild := func(o config.Options) (*heatmap.Session, error) { return a.session(args, o) }
			p := tui.Program(tui.New(s, rebuild, a.log))

			if a.configPath != "" {
				err := config.Watch(a.configPath, a.log, func(o config.Options) {
					p.Send(tui.ReloadMsg{Options: o})
				})
				if err != nil {
					a.log.Warn("config watch disabled", zap.Error(err))
				}
			}
			if a.opts.MetricsAddr != "" {
				stop := a.serveMetrics(a.opts.MetricsAddr)
				defer stop()
			}

			final, err := p.Run()
			if m, ok := final.(tui.Model); ok {
				m.Session().Close()
			}
			return err
		},
	}
}

// serveMetrics exposes the registry on addr until the returned function
// is called.
func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.log.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [dataset.json ...]",
		Short: "Print the shape and domains of datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			grids, err := loadDatasets(args, a.stdin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), infoTable(grids))
			return nil
		},
	}
}

func infoTable(grids []*grid.Grid) string {
	e := grid.ComputeExtents(grids)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("dataset", "cols×rows", "x", "y", "z", "missing")
	for i, g := range grids {
		rows, cols := g.Dims()
		xk, yk := kindOf(g.XTime), kindOf(g.YTime)
		t.Row(
			fmt.Sprint(i),
			fmt.Sprintf("%d×%d", cols, rows),
			domain(xk, g.X[0], g.X[len(g.X)-1]),
			domain(yk, g.Y[0], g.Y[len(g.Y)-1]),
			domain(axis.Linear, e.ZFiles[i].Min, e.ZFiles[i].Max),
			fmt.Sprint(missing(g)),
		)
	}
	t.Row("all", "",
		domain(axis.Linear, e.X.Min, e.X.Max),
		domain(axis.Linear, e.Y.Min, e.Y.Max),
		domain(axis.Linear, e.Z.Min, e.Z.Max), "")
	return t.Render()
}

func kindOf(temporal bool) axis.Kind {
	if temporal {
		return axis.Time
	}
	return axis.Linear
}

func domain(k axis.Kind, lo, hi float64) string {
	return "[" + axis.FormatValue(k, lo) + ", " + axis.FormatValue(k, hi) + "]"
}

func missing(g *grid.Grid) int {
	n := 0
	for _, v := range g.Values() {
		if !grid.IsNumeric(v) {
			n++
		}
	}
	return n
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "heatcanvas:", err)
		os.Exit(1)
	}
}
