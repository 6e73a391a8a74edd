package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/blueprint-area/internal/batch"
	"github.com/ironsheep/blueprint-area/internal/config"
	"github.com/ironsheep/blueprint-area/internal/detection"
	"github.com/ironsheep/blueprint-area/internal/export"
	"github.com/ironsheep/blueprint-area/internal/imaging"
	"github.com/ironsheep/blueprint-area/internal/ocr"
	"github.com/ironsheep/blueprint-area/internal/server"
	"github.com/ironsheep/blueprint-area/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("blueprint-area - total room area from floor plan images")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  blueprint-area [options] <image|folder|archive.zip>")
	fmt.Println("  blueprint-area serve [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	flags, _ := newFlags()
	flags.SetOutput(os.Stdout)
	flags.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  BLUEPRINT_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  BLUEPRINT_TESSDATA_PREFIX    Tesseract language data directory")
	fmt.Println("  BLUEPRINT_MODEL_PATH         YOLO ONNX model enabling furniture detection")
	fmt.Println()
	fmt.Println("The serve command speaks MCP over stdin/stdout.")
}

type cliFlags struct {
	config      string
	out         string
	extractDir  string
	annotateDir string
	lang        string
	tessdata    string
	model       string
	labels      string
	logLevel    string
	preprocess  bool
}

func newFlags() (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("blueprint-area", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML configuration file")
	fs.StringVar(&f.out, "out", "", "XLSX export path")
	fs.StringVar(&f.extractDir, "extract-dir", "", "directory to extract zip archives into")
	fs.StringVar(&f.annotateDir, "annotate-dir", "", "write annotated detection images here")
	fs.StringVar(&f.lang, "lang", "", "Tesseract languages, e.g. eng+rus")
	fs.StringVar(&f.tessdata, "tessdata", "", "Tesseract language data directory")
	fs.StringVar(&f.model, "model", "", "YOLO ONNX model for furniture detection")
	fs.StringVar(&f.labels, "labels", "", "class label file for the model")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&f.preprocess, "preprocess", false, "grayscale images before OCR")
	return fs, f
}

// apply overrides cfg with the flags that were set explicitly.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "out":
			cfg.Output.ExportPath = f.out
		case "extract-dir":
			cfg.Output.ExtractDir = f.extractDir
		case "annotate-dir":
			cfg.Output.AnnotateDir = f.annotateDir
		case "lang":
			cfg.OCR.Language = f.lang
		case "tessdata":
			cfg.OCR.TessdataPrefix = f.tessdata
		case "model":
			cfg.Detector.ModelPath = f.model
		case "labels":
			cfg.Detector.LabelsPath = f.labels
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "preprocess":
			cfg.OCR.Preprocess = f.preprocess
		}
	})
}

func main() {
	args := os.Args[1:]

	// Handle --version and --help
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("blueprint-area %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	fs, f := newFlags()
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if !serve && fs.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	if err := run(serve, fs, f); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(serve bool, fs *flag.FlagSet, f *cliFlags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Log to stderr (stdout is for MCP protocol and results)
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("starting", "version", Version, "build_time", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := ocr.New(cfg.OCR)
	if err != nil {
		return fmt.Errorf("failed to start OCR: %w", err)
	}
	defer engine.Close()
	logger.Debug("ocr ready", "tesseract", engine.Version(), "language", cfg.OCR.Language)

	opts := batch.Options{
		OCR:         engine,
		AnnotateDir: cfg.Output.AnnotateDir,
		Logger:      logger,
	}
	if c, err := imaging.ParseColor(cfg.Output.AnnotationColor); err == nil {
		opts.AnnotationColor = c
	}
	if cfg.Detector.Enabled() {
		det, err := detection.NewONNXDetector(cfg.Detector)
		if err != nil {
			return fmt.Errorf("failed to start detector: %w", err)
		}
		defer det.Close()
		opts.Detector = det
		logger.Debug("detector ready", "model", cfg.Detector.ModelPath, "classes", len(det.Labels()))
	}

	pipeline, err := batch.NewPipeline(opts)
	if err != nil {
		return err
	}

	if serve {
		srv := server.New(pipeline, server.Options{
			ExtractDir: cfg.Output.ExtractDir,
			ExportPath: cfg.Output.ExportPath,
			Logger:     logger,
		})
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	return processBatch(ctx, pipeline, cfg, fs.Arg(0), logger)
}

func processBatch(ctx context.Context, p *batch.Pipeline, cfg *config.Config, input string, logger *slog.Logger) error {
	paths, err := source.Resolve(input, cfg.Output.ExtractDir)
	if err != nil {
		return err
	}

	sess := batch.NewSession()
	stats, err := p.Run(ctx, sess, paths)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	for _, r := range sess.Table.Results() {
		a := r.Aggregate
		fmt.Printf("%s\t%.2f m²\t%d rooms", a.SourceName, a.TotalArea, a.RoomCount)
		if cfg.Detector.Enabled() {
			fmt.Printf("\t%d living", r.LivingCount)
		}
		fmt.Println()
		for _, l := range r.LabeledAreas {
			fmt.Printf("  %s: %.2f\n", l.Label, l.Value)
		}
		if len(r.LabeledAreas) > 0 {
			fmt.Printf("  labeled total: %.2f\n", r.LabeledTotal)
		}
	}
	fmt.Printf("%d processed, %d skipped, %d failed, %d duplicates\n",
		stats.Succeeded, stats.Skipped, stats.Failed, stats.Duplicates)

	if err := export.WriteFile(cfg.Output.ExportPath, sess.Table.Rows()); err != nil {
		if errors.Is(err, export.ErrNoData) {
			logger.Warn("nothing to export", "path", cfg.Output.ExportPath)
			return nil
		}
		return err
	}
	logger.Info("results exported", "path", cfg.Output.ExportPath, "rows", sess.Table.Len())
	return nil
}
