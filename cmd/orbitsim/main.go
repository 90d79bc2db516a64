package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/transport"
	"github.com/san-kum/orbitsim/internal/viz"
)

var (
	dataDir string
	// run flags
	preset     string
	duration   float64
	tolerance  float64
	dt0        float64
	integrator string
	serveAddr  string
	live       bool
	// plot flags
	plotCol string
	svgPath string
	svgCols string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitsim",
		Short: "adaptive N-body integration with pluggable tidal effects",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "built-in scenario (kozai, twobody)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "override duration")
	runCmd.Flags().Float64Var(&tolerance, "tol", 0, "override integrator tolerance")
	runCmd.Flags().Float64Var(&dt0, "dt0", 0, "override initial timestep")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "override integrator (bs, rk45)")
	runCmd.Flags().StringVar(&serveAddr, "serve", "", "stream samples over websocket on this address")
	runCmd.Flags().BoolVar(&live, "live", false, "show live terminal view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotCol, "col", "b1_e", "column for the terminal plot")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG plot to this path instead")
	plotCmd.Flags().StringVar(&svgCols, "cols", "b1_e,b1_inc", "columns for the SVG plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		fn, ok := config.Presets()[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = fn()
	case len(args) == 1:
		var err error
		cfg, err = config.Load(args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("need a scenario file or --preset")
	}

	if duration > 0 {
		cfg.Duration = duration
	}
	if tolerance > 0 {
		cfg.Tolerance = tolerance
	}
	if dt0 > 0 {
		cfg.Dt0 = dt0
	}
	if integrator != "" {
		cfg.Integrator = integrator
	}
	return cfg, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if cfg.Duration <= 0 || cfg.SampleInterval <= 0 {
		return fmt.Errorf("scenario needs positive duration and sample_interval")
	}

	s, err := cfg.Build()
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	var streamer *transport.Streamer
	if serveAddr != "" {
		streamer = transport.NewStreamer()
		go func() {
			if err := streamer.ListenAndServe(serveAddr); err != nil {
				fmt.Fprintf(os.Stderr, "stream server: %v\n", err)
			}
		}()
	}

	var frames chan viz.FrameMsg
	if live {
		frames = make(chan viz.FrameMsg, 8)
	}

	integrate := func(ctx context.Context) error {
		sampler := sim.NewSampler(s)
		header := sampler.Header()

		energy := metrics.NewDrift("energy_drift", s.Energy)
		angMom := metrics.NewDrift("angmom_drift", func() float64 { return s.AngularMomentum().Len() })

		samples := int(cfg.Duration / cfg.SampleInterval)
		rows := make([][]float64, 0, samples+1)

		record := func(ctx context.Context) {
			row := sampler.Row()
			rows = append(rows, row)
			energy.Observe(s.T())
			angMom.Observe(s.T())
			if streamer != nil {
				streamer.Broadcast(header, row)
			}
			if frames != nil {
				sendFrame(ctx, frames, liveFrame(s))
			}
		}

		record(ctx)
		for k := 1; k <= samples; k++ {
			if err := s.AdvanceTo(ctx, float64(k)*cfg.SampleInterval); err != nil {
				return err
			}
			record(ctx)

			if !live && k%100 == 0 && s.Store().Len() > 1 {
				if el, err := s.OrbitOf(1, 0); err == nil {
					fmt.Printf("t=%.1f\t a=%.6f\t e=%.5f\n", s.T()/(2*math.Pi), el.A, el.E)
				}
			}
		}

		runID, err := store.Save(storage.RunMetadata{
			Scenario:   cfg.Name,
			Integrator: cfg.Integrator,
			Tolerance:  cfg.Tolerance,
			Dt0:        cfg.Dt0,
			Duration:   cfg.Duration,
			Metrics: map[string]float64{
				energy.Name(): energy.Value(),
				angMom.Name(): angMom.Value(),
			},
		}, header, rows)
		if err != nil {
			return err
		}

		fmt.Printf("saved run %s (%d samples, energy drift %.3e, |L| drift %.3e)\n",
			runID, len(rows), energy.Value(), angMom.Value())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !live {
		return integrate(ctx)
	}

	// The TUI intercepts 'q' and ctrl+c itself, so quitting the view
	// must cancel the integration explicitly; until it notices, the
	// producer may be parked on a frame send and needs a drain.
	liveCtx, liveCancel := context.WithCancel(ctx)
	defer liveCancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- integrate(liveCtx)
		close(frames)
	}()

	p := tea.NewProgram(viz.NewModel(cfg.Name, frames))
	_, runErr := p.Run()
	liveCancel()
	drainFrames(frames)

	if runErr != nil {
		<-errCh
		return runErr
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// sendFrame hands one frame to the live view without wedging the
// integration if the view has gone away.
func sendFrame(ctx context.Context, frames chan<- viz.FrameMsg, f viz.FrameMsg) {
	select {
	case frames <- f:
	case <-ctx.Done():
	}
}

// drainFrames consumes leftover frames until the integration goroutine
// closes the channel.
func drainFrames(frames <-chan viz.FrameMsg) {
	for range frames {
	}
}

func liveFrame(s *sim.Simulation) viz.FrameMsg {
	f := viz.FrameMsg{T: s.T(), Dt: s.Dt()}
	if s.Store().Len() > 1 {
		if el, err := s.OrbitOf(1, 0); err == nil {
			f.A, f.E, f.Inc = el.A, el.E, el.Inc
		}
		p0, _ := s.Store().Particle(0)
		p1, _ := s.Store().Particle(1)
		rel := p1.Pos.Sub(p0.Pos)
		f.X, f.Y = rel.X(), rel.Y()
		if spin, err := s.Spin(1); err == nil {
			f.SpinMag = spin.Len()
		}
	}
	return f
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tINTEGRATOR\tSAMPLES\tENERGY DRIFT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\n",
			r.ID, r.Scenario, r.Integrator, r.Samples, r.Metrics["energy_drift"])
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	header, rows, err := store.LoadSeries(args[0])
	if err != nil {
		return err
	}

	if svgPath != "" {
		cols := strings.Split(svgCols, ",")
		return export.TimeSeries(header, rows, cols, args[0], svgPath)
	}

	values, err := storage.Column(header, rows, plotCol)
	if err != nil {
		return err
	}
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(16),
		asciigraph.Width(100),
		asciigraph.Caption(fmt.Sprintf("%s: %s", args[0], plotCol)),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
