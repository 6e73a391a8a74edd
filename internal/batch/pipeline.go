package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/blueprint-area/internal/area"
	"github.com/ironsheep/blueprint-area/internal/detection"
	"github.com/ironsheep/blueprint-area/internal/imaging"
)

// TextRecognizer reads text tokens from an image.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]area.Token, error)
}

// ImageLoader decodes the image at path.
type ImageLoader func(path string) (image.Image, error)

// ImageResult is everything learned from one image.
type ImageResult struct {
	Aggregate    area.ImageAggregate   `json:"aggregate"`
	Measurements []area.AreaMeasurement `json:"measurements"`
	LabeledAreas []area.LabeledArea     `json:"labeled_areas,omitempty"`
	LabeledTotal float64                `json:"labeled_total"`
	Living       []detection.Detection  `json:"living,omitempty"`
	LivingCount  int                    `json:"living_count"`

	// AnnotatedPath is set when an annotated copy was written.
	AnnotatedPath string `json:"annotated_path,omitempty"`
}

// RunStats counts the outcome of a batch.
type RunStats struct {
	Scanned    int `json:"scanned"`
	Succeeded  int `json:"succeeded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
}

// Options configures a Pipeline. Only OCR is required.
type Options struct {
	OCR      TextRecognizer
	Detector detection.Detector
	Loader   ImageLoader

	// AnnotateDir receives a copy of each image with living detections
	// drawn on it. Empty disables annotation.
	AnnotateDir     string
	AnnotationColor color.Color

	Logger *slog.Logger
}

// Pipeline processes blueprint images into result rows.
type Pipeline struct {
	ocr        TextRecognizer
	classifier *detection.Classifier
	load       ImageLoader
	annotate   string
	color      color.Color
	logger     *slog.Logger
}

// NewPipeline creates a pipeline from opts.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.OCR == nil {
		return nil, errors.New("text recognizer is required")
	}

	p := &Pipeline{
		ocr:      opts.OCR,
		load:     opts.Loader,
		annotate: opts.AnnotateDir,
		color:    opts.AnnotationColor,
		logger:   opts.Logger,
	}
	if opts.Detector != nil {
		p.classifier = detection.NewClassifier(opts.Detector)
	}
	if p.load == nil {
		p.load = imaging.Open
	}
	if p.color == nil {
		c, _ := imaging.ParseColor(imaging.DefaultAnnotationColor)
		p.color = c
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// Process runs one image through decode, OCR, area filtering and, when a
// detector is configured, furniture classification. A detector failure is
// logged and leaves the living count at zero; decode and OCR failures are
// returned as *ProcessingError.
func (p *Pipeline) Process(ctx context.Context, path string) (*ImageResult, error) {
	img, err := p.load(path)
	if err != nil {
		return nil, NewDecodeError(path, err)
	}

	tokens, err := p.ocr.Recognize(ctx, img)
	if err != nil {
		return nil, NewOCRError(path, err)
	}

	measurements := area.MeasureTokens(tokens)
	labeled := area.LabelAreas(tokens)
	res := &ImageResult{
		Aggregate:    area.Aggregate(filepath.Base(path), path, measurements),
		Measurements: measurements,
		LabeledAreas: labeled,
		LabeledTotal: area.SumLabeled(labeled),
	}

	if p.classifier == nil {
		return res, nil
	}

	living, err := p.classifier.Living(ctx, img)
	if err != nil {
		p.logger.Warn("detection failed", "error", NewDetectionError(path, err))
		return res, nil
	}
	res.Living = living
	res.LivingCount = len(living)

	if p.annotate != "" {
		out, err := p.writeAnnotated(path, img, living)
		if err != nil {
			p.logger.Warn("annotation failed", "path", path, "error", err)
		} else {
			res.AnnotatedPath = out
		}
	}
	return res, nil
}

func (p *Pipeline) writeAnnotated(path string, img image.Image, living []detection.Detection) (string, error) {
	if err := os.MkdirAll(p.annotate, 0755); err != nil {
		return "", fmt.Errorf("failed to create annotation directory: %w", err)
	}
	base := filepath.Base(path)
	out := filepath.Join(p.annotate, strings.TrimSuffix(base, filepath.Ext(base))+"_annotated.png")

	annotated := imaging.Annotate(img, detection.Annotations(living), p.color)
	if err := imaging.SaveAnnotated(out, annotated); err != nil {
		return "", err
	}
	return out, nil
}

// Run clears the session and processes paths in order, recording each
// success in the session table. Images that cannot be decoded are skipped;
// OCR failures are counted as failed. Cancellation is checked between
// images and returns the stats so far with ctx's error; rows already
// recorded are kept.
func (p *Pipeline) Run(ctx context.Context, sess *Session, paths []string) (RunStats, error) {
	var stats RunStats
	start := time.Now()
	runID := sess.Begin()
	logger := p.logger.With("run_id", runID.String())

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			logger.Info("batch cancelled", "scanned", stats.Scanned)
			return stats, err
		}
		stats.Scanned++

		res, err := p.Process(ctx, path)
		if err != nil {
			var pe *ProcessingError
			if errors.As(err, &pe) && pe.Code == ErrorDecodeFailed {
				stats.Skipped++
				logger.Debug("image skipped", "path", path, "error", err)
			} else {
				stats.Failed++
				logger.Warn("image failed", "path", path, "error", err)
			}
			continue
		}

		if !sess.Table.Add(res) {
			stats.Duplicates++
			logger.Debug("duplicate image name", "name", res.Aggregate.SourceName, "path", path)
			continue
		}
		stats.Succeeded++
		logger.Info("image processed",
			"name", res.Aggregate.SourceName,
			"total_area", res.Aggregate.TotalArea,
			"rooms", res.Aggregate.RoomCount,
			"living", res.LivingCount,
		)
	}

	logger.Info("batch complete",
		"scanned", stats.Scanned,
		"succeeded", stats.Succeeded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duplicates", stats.Duplicates,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}
