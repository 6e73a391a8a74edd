package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/blueprint-area/internal/area"
	"github.com/ironsheep/blueprint-area/internal/imaging"
)

// Defaults used when the corresponding Config field is empty.
const (
	DefaultLanguage    = "eng+rus"
	DefaultLevel       = "line"
	DefaultPageSegMode = int(gosseract.PSM_SPARSE_TEXT)
)

// Config controls how the Tesseract engine is set up.
type Config struct {
	// Language is a "+"-separated list of Tesseract language codes.
	Language string `yaml:"language"`

	// TessdataPrefix is the directory holding <lang>.traineddata files.
	// Empty uses the system default.
	TessdataPrefix string `yaml:"tessdata_prefix"`

	// Level is the token granularity: "line" (default) or "word".
	Level string `yaml:"level"`

	// PageSegMode is a Tesseract page segmentation mode. Sparse text (11)
	// suits floor plans where labels are scattered across the page.
	PageSegMode int `yaml:"page_seg_mode"`

	// Preprocess converts images to grayscale before recognition,
	// adjusting contrast by Contrast when it is non-zero.
	Preprocess bool    `yaml:"preprocess"`
	Contrast   float64 `yaml:"contrast"`
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a line or word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized text content, trimmed of surrounding space.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the regions recognized on an image.
type OCRResult struct {
	// Regions contains the recognized lines (or words) in reading order.
	Regions []TextRegion `json:"regions"`
}

// Engine is a reusable Tesseract handle.
//
// Construction loads the language data and runs one warm-up recognition,
// which takes on the order of a second for "eng+rus". Build one Engine per
// process and pass it to every image of every batch. Engine serializes
// calls, as the underlying Tesseract API is not reentrant.
type Engine struct {
	cfg    Config
	level  gosseract.PageIteratorLevel
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates an Engine. It fails when the language data cannot be found
// or Tesseract cannot initialize, which callers treat as fatal.
func New(cfg Config) (*Engine, error) {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Level == "" {
		cfg.Level = DefaultLevel
	}
	if cfg.PageSegMode == 0 {
		cfg.PageSegMode = DefaultPageSegMode
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if err := CheckTessdata(cfg.TessdataPrefix, cfg.Language); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(Languages(cfg.Language)...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	e := &Engine{cfg: cfg, level: level, client: client}
	if err := e.warmUp(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize tesseract: %w", err)
	}
	return e, nil
}

// warmUp forces Tesseract to load its models now rather than on the first
// blueprint.
func (e *Engine) warmUp() error {
	blank := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}
	_, err := e.Extract(blank)
	return err
}

// Extract runs OCR on an in-memory image and returns the regions at the
// engine's level. Empty regions are dropped.
func (e *Engine) Extract(img image.Image) (*OCRResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(e.level)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{Regions: regions}, nil
}

// Recognize runs OCR on img (optionally preprocessed) and returns its
// regions as area tokens.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]area.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.cfg.Preprocess {
		img = imaging.PrepareForOCR(img, e.cfg.Contrast)
	}

	result, err := e.Extract(img)
	if err != nil {
		return nil, err
	}
	return Tokens(result.Regions), nil
}

// Version returns the linked Tesseract version.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Version()
}

// Close releases the Tesseract handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

// Tokens converts OCR regions to area tokens, preserving order.
func Tokens(regions []TextRegion) []area.Token {
	tokens := make([]area.Token, len(regions))
	for i, r := range regions {
		tokens[i] = area.Token{
			Text:       r.Text,
			Bounds:     image.Rect(r.Bounds.X1, r.Bounds.Y1, r.Bounds.X2, r.Bounds.Y2),
			Confidence: r.Confidence,
		}
	}
	return tokens
}

// ParseLevel maps "line" and "word" to Tesseract iterator levels.
func ParseLevel(level string) (gosseract.PageIteratorLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "line", "textline":
		return gosseract.RIL_TEXTLINE, nil
	case "word":
		return gosseract.RIL_WORD, nil
	default:
		return 0, fmt.Errorf("unknown OCR level %q (want line or word)", level)
	}
}

// Languages splits a "+"-separated language list, dropping empty entries.
func Languages(language string) []string {
	var langs []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// CheckTessdata verifies that every requested language has a
// <lang>.traineddata file under prefix. An empty prefix is not checked,
// leaving discovery to Tesseract.
func CheckTessdata(prefix, language string) error {
	langs := Languages(language)
	if len(langs) == 0 {
		return fmt.Errorf("no OCR language configured")
	}
	if prefix == "" {
		return nil
	}
	for _, l := range langs {
		path := filepath.Join(prefix, l+".traineddata")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("missing language data for %q: %w", l, err)
		}
	}
	return nil
}
