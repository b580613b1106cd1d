package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/executor"
	"github.com/dshills/ocrsynth/pkg/fontengine/facefont"
	"github.com/dshills/ocrsynth/pkg/health"
	"github.com/dshills/ocrsynth/pkg/imagecodec"
	"github.com/dshills/ocrsynth/pkg/label"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
	"github.com/dshills/ocrsynth/pkg/scheduler"
	"github.com/dshills/ocrsynth/pkg/validate"
)

const version = "0.1.0"

// Exit codes, per the external interface: 0 = all targets met, 1 =
// unexpected error, 2 = validation failure, 3 = partial generation from
// resource exhaustion, 4 = cancelled.
const (
	exitOK                = 0
	exitUnexpectedError   = 1
	exitValidationFailure = 2
	exitPartial           = 3
	exitCancelled         = 4
)

// CLI flags
var (
	configPath  = flag.String("config", "", "Path to YAML batch configuration file (required)")
	outputDir   = flag.String("output-dir", ".", "Directory to write generated images and labels")
	fontDir     = flag.String("font-dir", "", "Root directory prepended to relative font globs in the config")
	backgroundDir = flag.String("background-dir", "", "Root directory prepended to relative background_dir entries in the config")
	corpusDir   = flag.String("corpus-dir", "", "Root directory prepended to relative corpus paths in the config")

	generationWorkers = flag.Int("generation-workers", 0, "Concurrent plan+render workers (0 = scheduler default)")
	ioWorkers         = flag.Int("io-workers", 0, "Concurrent PNG/JSON write workers (0 = scheduler default)")
	chunkSize         = flag.Int("chunk-size", 0, "Tasks per streaming chunk (0 = scheduler default)")
	ioBatchSize       = flag.Int("io-batch-size", 0, "Results per I/O batch within a chunk (0 = scheduler default)")

	resume      = flag.Bool("resume", false, "Resume from the output directory's checkpoint, skipping completed indices")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	seedOverride = flag.Uint64("seed-override", 0, "Override the config's master seed (0 = use config seed)")
	debugSVG    = flag.Bool("debug-svg", false, "After generation, write a char-box overlay SVG alongside each saved label")

	versionFlag = flag.Bool("version", false, "Print version and exit")
	help        = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("ocrsynth version %s\n", version)
		os.Exit(exitOK)
	}

	if *help {
		printHelp()
		os.Exit(exitOK)
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config flag is required")
		printUsage()
		os.Exit(exitUnexpectedError)
	}

	os.Exit(run())
}

// run wires the batch configuration through validation, resource
// resolution, and the Scheduler, returning the process exit code. It
// never calls os.Exit itself, so deferred cleanup always runs.
func run() int {
	logger := newLogger(*logLevel)

	cfg, err := config.Load(*configPath, isKnownDistribution)
	if err != nil {
		logger.Error().Err(err).Msg("loading configuration")
		return exitValidationFailure
	}
	if *seedOverride != 0 {
		logger.Info().Uint64("from", cfg.Seed).Uint64("to", *seedOverride).Msg("overriding master seed")
		cfg.Seed = *seedOverride
	}

	applyDirOverrides(cfg, *fontDir, *corpusDir, *backgroundDir)

	report := validate.Run(cfg)
	for _, w := range report.Warnings {
		logger.Warn().Msg(w)
	}
	if !report.Passed {
		for _, e := range report.Errors {
			logger.Error().Msg(e)
		}
		return exitValidationFailure
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Error().Err(err).Msg("creating output directory")
		return exitUnexpectedError
	}

	fontTracker := health.NewTracker()
	resources, err := scheduler.BuildResources(cfg, fontTracker)
	if err != nil {
		logger.Error().Err(err).Msg("resolving corpus and font resources")
		return exitUnexpectedError
	}

	var bgTracker *health.Tracker
	var backgrounds *plan.Backgrounds
	bgPaths, err := collectBackgroundPaths(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("listing background images")
		return exitUnexpectedError
	}
	if len(bgPaths) > 0 {
		bgTracker = health.NewTracker()
		backgrounds = &plan.Backgrounds{Paths: bgPaths, Tracker: bgTracker}
	}

	planner := plan.NewPlanner(cfg.Seed, backgrounds)

	engine := facefont.NewEngine(0)
	gen := executor.NewGenerator(engine, imagecodec.DecodeImage)

	opts := scheduler.Options{
		GenerationWorkers: *generationWorkers,
		IOWorkers:         *ioWorkers,
		ChunkSize:         *chunkSize,
		IOBatchSize:       *ioBatchSize,
		OutputDir:         *outputDir,
		Resume:            *resume,
	}
	sched := scheduler.New(cfg, planner, gen, fontTracker, bgTracker, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().Int("total_images", cfg.TotalImages).Uint64("seed", cfg.Seed).Str("output_dir", *outputDir).Msg("starting generation")
	start := time.Now()

	summary, err := sched.Run(ctx, resources)
	if err != nil {
		logger.Error().Err(err).Msg("generation aborted")
		return exitUnexpectedError
	}

	elapsed := time.Since(start)
	logger.Info().Int("generated", summary.Generated).Int("quota", summary.TotalQuota).
		Int("skipped", len(summary.Skipped)).Dur("elapsed", elapsed).Msg("generation finished")
	for _, s := range summary.Skipped {
		logger.Warn().Int("index", s.Index).Str("spec", s.SpecName).Str("reason", s.Reason).Msg("skipped image")
	}
	if summary.CheckpointWarn != "" {
		logger.Warn().Msg(summary.CheckpointWarn)
	}

	if *debugSVG {
		if err := writeDebugOverlays(*outputDir, logger); err != nil {
			logger.Error().Err(err).Msg("writing debug overlays")
		}
	}

	if summary.Cancelled {
		return exitCancelled
	}
	if summary.Generated < summary.TotalQuota {
		return exitPartial
	}
	return exitOK
}

func isKnownDistribution(name string) bool {
	return sampler.Distribution(name).Valid()
}

// applyDirOverrides joins fontDir/corpusDir/backgroundDir onto every
// specification's relative selector paths, leaving absolute paths (and
// already-populated weighted patterns) untouched unless they too are
// relative. Empty override flags are a no-op, letting the config's own
// paths (relative to the working directory) stand as written.
func applyDirOverrides(cfg *config.BatchConfig, fontDir, corpusDir, backgroundDir string) {
	for _, spec := range cfg.Specifications {
		if fontDir != "" {
			spec.Font.Glob = joinIfRelative(fontDir, spec.Font.Glob)
			for i := range spec.Font.Weights {
				spec.Font.Weights[i].Pattern = joinIfRelative(fontDir, spec.Font.Weights[i].Pattern)
			}
		}
		if corpusDir != "" {
			spec.Corpus.File = joinIfRelative(corpusDir, spec.Corpus.File)
			spec.Corpus.Directory = joinIfRelative(corpusDir, spec.Corpus.Directory)
			spec.Corpus.Glob = joinIfRelative(corpusDir, spec.Corpus.Glob)
			for i := range spec.Corpus.Weights {
				spec.Corpus.Weights[i].Pattern = joinIfRelative(corpusDir, spec.Corpus.Weights[i].Pattern)
			}
		}
		if backgroundDir != "" {
			spec.BackgroundDir = joinIfRelative(backgroundDir, spec.BackgroundDir)
		}
	}
}

func joinIfRelative(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// collectBackgroundPaths globs every distinct BackgroundDir named across
// the batch's specifications for common raster image extensions. The
// Planner holds one shared background pool and health tracker regardless
// of how many specifications reference one, since a background crop that
// fails validation for one specification is just as unusable for another.
func collectBackgroundPaths(cfg *config.BatchConfig) ([]string, error) {
	seenDirs := make(map[string]bool)
	var paths []string
	for _, spec := range cfg.Specifications {
		if spec.BackgroundDir == "" || seenDirs[spec.BackgroundDir] {
			continue
		}
		seenDirs[spec.BackgroundDir] = true
		entries, err := os.ReadDir(spec.BackgroundDir)
		if err != nil {
			return nil, fmt.Errorf("reading background directory %q: %w", spec.BackgroundDir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".png", ".jpg", ".jpeg":
				paths = append(paths, filepath.Join(spec.BackgroundDir, e.Name()))
			}
		}
	}
	return paths, nil
}

// writeDebugOverlays re-reads every label JSON written to outputDir and
// renders a sibling char-box overlay SVG, one record at a time so memory
// use stays flat regardless of batch size.
func writeDebugOverlays(outputDir string, logger zerolog.Logger) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return fmt.Errorf("reading output directory: %w", err)
	}
	opts := label.DefaultDebugSVGOptions()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		jsonPath := filepath.Join(outputDir, e.Name())
		record, err := label.LoadGenerationRecord(jsonPath)
		if err != nil {
			logger.Warn().Err(err).Str("file", jsonPath).Msg("skipping unreadable label")
			continue
		}
		svgPath := strings.TrimSuffix(jsonPath, ".json") + ".debug.svg"
		if err := label.WriteDebugSVG(record, svgPath, opts); err != nil {
			logger.Warn().Err(err).Str("file", jsonPath).Msg("writing debug overlay")
		}
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Str("component", "ocrsynth").Logger()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage: ocrsynth -config <batch.yaml> [options]")
	fmt.Fprintln(os.Stderr, "Run 'ocrsynth -help' for detailed help")
}

func printHelp() {
	fmt.Printf("ocrsynth version %s\n\n", version)
	fmt.Println("Generates labeled synthetic OCR training images from a batch configuration.")
	fmt.Println("\nUsage:")
	fmt.Println("  ocrsynth -config <batch.yaml> [options]")
	fmt.Println("\nRequired flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML batch configuration file")
	fmt.Println("\nResource and output flags:")
	fmt.Println("  -output-dir string        Output directory (default \".\")")
	fmt.Println("  -font-dir string          Root prepended to relative font globs")
	fmt.Println("  -background-dir string    Root prepended to relative background directories")
	fmt.Println("  -corpus-dir string        Root prepended to relative corpus paths")
	fmt.Println("\nConcurrency flags:")
	fmt.Println("  -generation-workers int   Concurrent plan+render workers")
	fmt.Println("  -io-workers int           Concurrent write workers")
	fmt.Println("  -chunk-size int           Tasks per streaming chunk")
	fmt.Println("  -io-batch-size int        Results per I/O batch")
	fmt.Println("\nRun control flags:")
	fmt.Println("  -resume                   Resume from the output directory's checkpoint")
	fmt.Println("  -seed-override uint       Override the config's master seed")
	fmt.Println("  -log-level string         debug, info, warn, or error (default \"info\")")
	fmt.Println("  -debug-svg                Write a char-box overlay SVG next to each label")
	fmt.Println("  -version                  Print version and exit")
	fmt.Println("  -help                     Show this help message")
	fmt.Println("\nExit codes:")
	fmt.Println("  0  every targeted image was generated")
	fmt.Println("  1  unexpected error (config load, I/O setup, scheduler fault)")
	fmt.Println("  2  configuration or filesystem precondition validation failed")
	fmt.Println("  3  partial generation: some images were skipped after exhausting retries")
	fmt.Println("  4  run was cancelled (SIGINT) before reaching quota")
	fmt.Println("\nExamples:")
	fmt.Println("  ocrsynth -config batch.yaml -output-dir ./out")
	fmt.Println("  ocrsynth -config batch.yaml -output-dir ./out -resume")
	fmt.Println("  ocrsynth -config batch.yaml -output-dir ./out -generation-workers 16 -io-workers 8")
}
