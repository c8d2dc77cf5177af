// Command gammamc estimates, for a sweep of segment lengths, the probability
// that a random segment meets the central square, and writes one
// radius/ratio row per length to a TSV table.
//
// With -db set, the positional commands "runs", "show <run-id>" and
// "migrate status|down" read the recorded run history instead of sweeping.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/xcthulhu/roland-mc/internal/config"
	"github.com/xcthulhu/roland-mc/internal/db"
	"github.com/xcthulhu/roland-mc/internal/estimator"
	"github.com/xcthulhu/roland-mc/internal/fsutil"
	"github.com/xcthulhu/roland-mc/internal/report"
	"github.com/xcthulhu/roland-mc/internal/results"
	"github.com/xcthulhu/roland-mc/internal/sweep"
	"github.com/xcthulhu/roland-mc/internal/timeutil"
	"github.com/xcthulhu/roland-mc/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON sweep config (defaults apply when empty)")
	radiusFlag  = flag.String("radius", "", "Radius range min:max:step, or a comma-separated list of radii")
	samples     = flag.Int("samples", 0, "Accepted samples per radius")
	seed        = flag.Uint64("seed", 0, "Random seed (derived from the clock when unset)")
	maxDraws    = flag.Int("max-draws", 0, "Give up on a radius after this many draws (0 = unbounded)")
	output      = flag.String("output", "", "Output TSV path")
	dbPath      = flag.String("db", "", "SQLite database recording run history (disabled when empty)")
	pngPath     = flag.String("png", "", "Write a PNG chart of the results to this path")
	htmlPath    = flag.String("html", "", "Write an interactive HTML chart of the results to this path")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// plan is a fully resolved sweep.
type plan struct {
	cfg   *config.SweepConfig
	spec  sweep.RangeSpec
	radii []float64
	seed  uint64
}

// applyFlags copies every explicitly set flag over cfg.
func applyFlags(cfg *config.SweepConfig, set map[string]bool) (explicitRadii []float64, err error) {
	if set["radius"] {
		s := strings.TrimSpace(*radiusFlag)
		if strings.Contains(s, ":") {
			spec, err := sweep.ParseRangeSpec(s)
			if err != nil {
				return nil, err
			}
			cfg.RadiusMin, cfg.RadiusMax, cfg.RadiusStep = &spec.Min, &spec.Max, &spec.Step
		} else {
			explicitRadii, err = sweep.ParseRadii(s)
			if err != nil {
				return nil, err
			}
			if len(explicitRadii) == 0 {
				return nil, errors.New("-radius must name at least one radius")
			}
		}
	}
	if set["samples"] {
		cfg.Samples = samples
	}
	if set["seed"] {
		cfg.Seed = seed
	}
	if set["max-draws"] {
		cfg.MaxDraws = maxDraws
	}
	if set["output"] {
		cfg.Output = output
	}
	if set["db"] {
		cfg.DBPath = dbPath
	}
	if set["png"] {
		cfg.PNGPath = pngPath
	}
	if set["html"] {
		cfg.HTMLPath = htmlPath
	}
	return explicitRadii, nil
}

// resolvePlan applies flag overrides to cfg and picks the radii and seed.
func resolvePlan(cfg *config.SweepConfig, set map[string]bool, now time.Time) (plan, error) {
	radii, err := applyFlags(cfg, set)
	if err != nil {
		return plan{}, err
	}
	if err := cfg.Validate(); err != nil {
		return plan{}, fmt.Errorf("invalid configuration: %w", err)
	}

	p := plan{cfg: cfg}
	if len(radii) > 0 {
		if err := validateRadii(radii); err != nil {
			return plan{}, err
		}
		p.radii = radii
		p.spec = sweep.RangeSpec{Min: floats.Min(radii), Max: floats.Max(radii)}
	} else {
		p.spec = sweep.RangeSpec{Min: cfg.GetRadiusMin(), Max: cfg.GetRadiusMax(), Step: cfg.GetRadiusStep()}
		if err := p.spec.Validate(); err != nil {
			return plan{}, err
		}
		p.radii = p.spec.Values()
	}

	if s, ok := cfg.GetSeed(); ok {
		p.seed = s
	} else {
		p.seed = uint64(now.UnixNano())
	}
	return p, nil
}

// validateRadii rejects lists the sweep could only fail on partway through,
// after rows have been written.
func validateRadii(radii []float64) error {
	seen := make(map[float64]bool, len(radii))
	for _, r := range radii {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return fmt.Errorf("%w: got %g", estimator.ErrInvalidRadius, r)
		}
		if seen[r] {
			return fmt.Errorf("duplicate radius %g in -radius list", r)
		}
		seen[r] = true
	}
	return nil
}

// run executes the sweep described by p, writing the TSV table and any
// optional outputs. Partial results are kept when the sweep stops early.
func run(ctx context.Context, fsys fsutil.FileSystem, p plan, clock timeutil.Clock) (summary sweep.Summary, err error) {
	out := p.cfg.GetOutput()
	if dir := filepath.Dir(out); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return sweep.Summary{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tsv, err := results.NewTSVSink(fsys, out)
	if err != nil {
		return sweep.Summary{}, err
	}
	sinks := []results.Sink{tsv}

	var (
		store *db.DB
		rec   db.Run
	)
	if path := p.cfg.GetDBPath(); path != "" {
		store, err = db.Open(path)
		if err != nil {
			tsv.Close()
			return sweep.Summary{}, fmt.Errorf("failed to open run database: %w", err)
		}
		defer store.Close()

		rec, err = store.CreateRun(db.RunParams{
			Radius:   p.spec,
			Samples:  p.cfg.GetSamples(),
			Seed:     p.seed,
			MaxDraws: p.cfg.GetMaxDraws(),
		}, clock.Now())
		if err != nil {
			tsv.Close()
			return sweep.Summary{}, err
		}
		log.Printf("recording run %s in %s", rec.ID, path)
		sinks = append(sinks, store.NewRunSink(rec.ID))
	}

	var collector *results.Collector
	if p.cfg.GetPNGPath() != "" || p.cfg.GetHTMLPath() != "" {
		collector = results.NewCollector()
		sinks = append(sinks, collector)
	}

	sink := results.NewMultiSink(sinks...)
	runner := &sweep.Runner{
		Estimator:        estimator.NewSeeded(p.seed, estimator.WithMaxDraws(p.cfg.GetMaxDraws())),
		Sink:             sink,
		Samples:          p.cfg.GetSamples(),
		Clock:            clock,
		ProgressInterval: p.cfg.GetProgressInterval(),
	}
	summary, err = runner.Run(ctx, p.radii)
	if cerr := sink.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close outputs: %w", cerr))
	}

	if store != nil {
		if ferr := store.FinishRun(rec.ID, summary, err); ferr != nil {
			log.Printf("failed to finish run %s: %v", rec.ID, ferr)
		}
	}

	if collector != nil {
		if rows := collector.Rows(); len(rows) > 0 {
			opts := report.Options{Subtitle: fmt.Sprintf("%d samples per radius, seed %d", p.cfg.GetSamples(), p.seed)}
			if path := p.cfg.GetPNGPath(); path != "" {
				if perr := report.SavePNG(fsys, path, rows, opts); perr != nil {
					err = errors.Join(err, perr)
				}
			}
			if path := p.cfg.GetHTMLPath(); path != "" {
				if herr := report.SaveHTML(fsys, path, rows, opts); herr != nil {
					err = errors.Join(err, herr)
				}
			}
		}
	}

	return summary, err
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("gammamc"))
		return
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := config.DefaultSweepConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadSweepConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	// Positional arguments select a run history command instead of a sweep.
	if flag.NArg() > 0 {
		if set["db"] {
			cfg.DBPath = dbPath
		}
		path := cfg.GetDBPath()
		if path == "" {
			log.Fatal("run history commands require -db (or db_path in the config)")
		}
		store, err := db.Open(path)
		if err != nil {
			log.Fatalf("failed to open run database: %v", err)
		}
		err = runHistoryCommand(os.Stdout, store, flag.Args())
		store.Close()
		if err != nil {
			log.Fatalf("%s: %v", flag.Arg(0), err)
		}
		return
	}

	clock := timeutil.RealClock{}
	p, err := resolvePlan(cfg, set, clock.Now())
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}
	if _, ok := cfg.GetSeed(); !ok {
		log.Printf("using seed %d", p.seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := run(ctx, fsutil.OSFileSystem{}, p, clock)
	if err != nil {
		stop()
		log.Fatalf("sweep failed after %d radii: %v", summary.Radii, err)
	}
	log.Printf("wrote %d rows to %s in %v", summary.Radii, cfg.GetOutput(), summary.Elapsed())
}
