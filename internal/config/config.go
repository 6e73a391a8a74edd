// Package config loads settings from defaults, an optional YAML file, a
// .env file and BLUEPRINT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/blueprint-area/internal/detection"
	"github.com/ironsheep/blueprint-area/internal/imaging"
	"github.com/ironsheep/blueprint-area/internal/ocr"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BLUEPRINT_"

// Output holds output locations.
type Output struct {
	ExportPath      string `yaml:"export_path"`
	ExtractDir      string `yaml:"extract_dir"`
	AnnotateDir     string `yaml:"annotate_dir"`
	AnnotationColor string `yaml:"annotation_color"`
}

// Config is the complete application configuration.
type Config struct {
	OCR      ocr.Config       `yaml:"ocr"`
	Detector detection.Config `yaml:"detector"`
	Output   Output           `yaml:"output"`
	LogLevel string           `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OCR: ocr.Config{
			Language:    ocr.DefaultLanguage,
			Level:       ocr.DefaultLevel,
			PageSegMode: ocr.DefaultPageSegMode,
		},
		Output: Output{
			ExportPath:      "blueprint_areas.xlsx",
			AnnotationColor: imaging.DefaultAnnotationColor,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. path names an optional YAML file; an
// empty path skips it. A .env file in the working directory is read when
// present and never overrides variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	setString("OCR_LANGUAGE", &c.OCR.Language)
	setString("TESSDATA_PREFIX", &c.OCR.TessdataPrefix)
	setString("OCR_LEVEL", &c.OCR.Level)
	setString("MODEL_PATH", &c.Detector.ModelPath)
	setString("LABELS_PATH", &c.Detector.LabelsPath)
	setString("ONNXRUNTIME_LIB", &c.Detector.SharedLibraryPath)
	setString("EXPORT_PATH", &c.Output.ExportPath)
	setString("EXTRACT_DIR", &c.Output.ExtractDir)
	setString("ANNOTATE_DIR", &c.Output.AnnotateDir)
	setString("ANNOTATION_COLOR", &c.Output.AnnotationColor)
	setString("LOG_LEVEL", &c.LogLevel)

	if v, ok := os.LookupEnv(EnvPrefix + "OCR_PREPROCESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sOCR_PREPROCESS %q: %w", EnvPrefix, v, err)
		}
		c.OCR.Preprocess = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "OCR_CONTRAST"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sOCR_CONTRAST %q: %w", EnvPrefix, v, err)
		}
		c.OCR.Contrast = f
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := ocr.ParseLevel(c.OCR.Level); err != nil {
		return err
	}
	if _, err := imaging.ParseColor(c.Output.AnnotationColor); err != nil {
		return err
	}
	if c.OCR.Contrast < -1 || c.OCR.Contrast > 1 {
		return fmt.Errorf("ocr contrast %v out of range -1..1", c.OCR.Contrast)
	}
	if c.Detector.Enabled() && c.Detector.LabelsPath == "" {
		return fmt.Errorf("detector labels_path is required when model_path is set")
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
