// Command phase-resolve resolves per-frame cell cycle classifications into
// consistent phase sequences and writes the resolved track table, the phase
// duration table and lineage annotations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/cellcycle/internal/cellcycle/pipeline"
	"github.com/banshee-data/cellcycle/internal/cellcycle/report"
	"github.com/banshee-data/cellcycle/internal/cellcycle/storage/sqlite"
	"github.com/banshee-data/cellcycle/internal/cellcycle/trackio"
	"github.com/banshee-data/cellcycle/internal/config"
	"github.com/banshee-data/cellcycle/internal/fsutil"
	"github.com/banshee-data/cellcycle/internal/timeutil"
	"github.com/banshee-data/cellcycle/internal/version"
)

const programName = "phase-resolve"

// Output file names inside -out.
const (
	resolvedFile    = "resolved.csv"
	phaseFile       = "phase.csv"
	annotationsFile = "annotations.csv"
	summaryFile     = "summary.html"
	plotsDir        = "plots"
)

var errUsage = errors.New("usage")

type cliOptions struct {
	input       string
	out         string
	configPath  string
	dbPath      string
	g2Threshold float64
	minTrack    int
	workers     int
	groundTruth bool
	plots       bool
	showVersion bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func parseFlags(args []string, output io.Writer) (*cliOptions, error) {
	o := &cliOptions{set: make(map[string]bool)}
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.input, "input", "", "Input track table (CSV)")
	fs.StringVar(&o.out, "out", ".", "Output directory")
	fs.StringVar(&o.configPath, "config", "", "Resolver config JSON (default: "+config.DefaultConfigPath+" when present)")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database to record the run in (optional)")
	fs.Float64Var(&o.g2Threshold, "g2-threshold", 0, "Fixed G2 arrest intensity threshold in [1,255] (default: clustering)")
	fs.IntVar(&o.minTrack, "min-track", 0, "Minimum track length kept in the phase table (overrides config)")
	fs.IntVar(&o.workers, "workers", 0, "Concurrent lineage workers (default: number of CPUs)")
	fs.BoolVar(&o.groundTruth, "ground-truth", false, "Treat predicted classes as manual annotations")
	fs.BoolVar(&o.plots, "plots", false, "Write duration histograms and an HTML summary")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s -input tracks.csv -out DIR [options]\n\n", programName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if !o.showVersion && o.input == "" {
		fs.Usage()
		return nil, fmt.Errorf("%w: -input is required", errUsage)
	}
	return o, nil
}

// loadConfig reads -config, or the defaults file when -config is not
// given, and applies explicit flag overrides.
func loadConfig(o *cliOptions) (*config.ResolverConfig, error) {
	var (
		cfg *config.ResolverConfig
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadResolverConfig(o.configPath)
	} else {
		cfg, err = config.LoadDefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if o.set["g2-threshold"] {
		cfg.SetG2Threshold(o.g2Threshold)
	}
	if o.set["min-track"] {
		cfg.SetMinTrack(o.minTrack)
	}
	if o.set["workers"] {
		cfg.SetWorkers(o.workers)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer, fsys fsutil.FileSystem, clock timeutil.Clock) error {
	o, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String(programName))
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	start := clock.Now()
	f, err := fsys.Open(o.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	rows, err := trackio.ReadTracks(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", o.input, err)
	}
	log.Printf("Read %d rows from %s", len(rows), o.input)

	var (
		res  *pipeline.Result
		opts pipeline.Options
		mode = sqlite.ModePredicted
	)
	if o.groundTruth {
		mode = sqlite.ModeGroundTruth
		opts = pipeline.GroundTruthOptions(cfg.GetWorkers())
		res, err = pipeline.ResolveGroundTruth(ctx, rows, opts.Workers)
	} else {
		opts = pipeline.Options{
			Params:      cfg.Params(),
			G2Threshold: cfg.GetG2Threshold(),
			Workers:     cfg.GetWorkers(),
		}
		res, err = pipeline.Run(ctx, rows, opts)
	}
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	if err := writeOutputs(fsys, o.out, res, o.plots); err != nil {
		return err
	}

	if o.dbPath != "" {
		runID, err := recordRun(o.dbPath, clock, &sqlite.Run{
			InputPath:   o.input,
			Mode:        mode,
			Params:      opts.Params,
			G2Threshold: opts.G2Threshold,
		}, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "run %s recorded in %s\n", runID, o.dbPath)
	}

	fmt.Fprintf(stdout, "resolved %d tracks into %d phase records (%d arrest, %d excluded) in %v\n",
		len(res.Annotations), len(res.Phases), len(res.Arrest), len(res.Diagnostics.Excluded()),
		clock.Since(start))
	return nil
}

func writeOutputs(fsys fsutil.FileSystem, out string, res *pipeline.Result, plots bool) error {
	if err := fsys.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{resolvedFile, func(w io.Writer) error { return trackio.WriteResolved(w, res.Tracks) }},
		{phaseFile, func(w io.Writer) error { return trackio.WritePhaseTable(w, res.Phases) }},
		{annotationsFile, func(w io.Writer) error { return trackio.WriteAnnotations(w, res.Annotations) }},
	}
	if plots {
		summary := report.Summarize(res.Phases)
		files = append(files, struct {
			name  string
			write func(io.Writer) error
		}{summaryFile, func(w io.Writer) error { return report.RenderHTML(w, summary) }})
	}

	for _, f := range files {
		if err := fsutil.WriteFile(fsys, filepath.Join(out, f.name), f.write); err != nil {
			return err
		}
	}

	if plots {
		if _, err := report.WriteHistograms(fsys, filepath.Join(out, plotsDir), res.Phases); err != nil {
			return err
		}
	}
	log.Printf("Wrote outputs to %s", out)
	return nil
}

func recordRun(path string, clock timeutil.Clock, run *sqlite.Run, res *pipeline.Result) (string, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	store := sqlite.NewRunStore(db.DB)
	store.SetClock(clock)
	if err := store.InsertRun(run, res); err != nil {
		return "", err
	}
	return run.RunID, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, fsutil.OSFileSystem{}, timeutil.RealClock{})
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", programName, err)
	}
}
