package detection

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// row builds a normalised prediction row with the given class scores.
func row(cx, cy, w, h float32, scores ...float32) []float32 {
	return append([]float32{cx, cy, w, h, 1}, scores...)
}

type fakeDetector struct {
	dets []Detection
	err  error
}

func (f *fakeDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	return f.dets, f.err
}

func TestDecodeRows(t *testing.T) {
	labels := []string{"sofa", "kitchen", "bed"}
	rows := [][]float32{
		row(0.5, 0.5, 0.2, 0.1, 0.9, 0.05, 0.05),
		row(0.25, 0.25, 0.1, 0.1, 0.1, 0.3, 0.5), // 0.5 is not above threshold
		row(0.75, 0.25, 0.1, 0.2, 0.0, 0.0, 0.7),
		{0.1, 0.1, 0.1, 0.1, 1}, // no scores
	}

	dets := DecodeRows(rows, 400, 200, labels)
	if len(dets) != 2 {
		t.Fatalf("expected 2 detections, got %d: %+v", len(dets), dets)
	}

	sofa := dets[0]
	if sofa.Label != "sofa" {
		t.Errorf("label: got %q, want sofa", sofa.Label)
	}
	// cx=200, cy=100, w=80, h=20
	want := Box{X: 160, Y: 90, W: 80, H: 20}
	if sofa.Box != want {
		t.Errorf("box: got %+v, want %+v", sofa.Box, want)
	}
	if sofa.Confidence < 0.89 || sofa.Confidence > 0.91 {
		t.Errorf("confidence: got %v", sofa.Confidence)
	}

	if dets[1].Label != "bed" {
		t.Errorf("second label: got %q, want bed", dets[1].Label)
	}
}

func TestDecodeRows_UnknownClass(t *testing.T) {
	dets := DecodeRows([][]float32{row(0.5, 0.5, 0.1, 0.1, 0.1, 0.8)}, 100, 100, []string{"sofa"})
	if len(dets) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(dets))
	}
	if dets[0].Label != "class 1" {
		t.Errorf("label: got %q, want class 1", dets[0].Label)
	}
}

func TestSplitRows(t *testing.T) {
	data := []float32{
		208, 104, 41.6, 20.8, 1, 0.9,
		0.5, 0.5, 0.1, 0.1, 1, 0.2,
	}

	rows, err := SplitRows(data, 2, 6, 416)
	if err != nil {
		t.Fatalf("SplitRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != 0.5 || rows[0][1] != 0.25 || rows[0][5] != 0.9 {
		t.Errorf("row not scaled: %v", rows[0])
	}
	if data[0] != 208 {
		t.Error("input data modified")
	}

	unscaled, err := SplitRows(data, 2, 6, 0)
	if err != nil {
		t.Fatalf("SplitRows failed: %v", err)
	}
	if unscaled[1][0] != 0.5 {
		t.Errorf("unscaled row: %v", unscaled[1])
	}

	if _, err := SplitRows(data, 3, 6, 0); err == nil {
		t.Error("SplitRows should fail on length mismatch")
	}
	if _, err := SplitRows(data, 2, 5, 0); err == nil {
		t.Error("SplitRows should fail without class scores")
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{"identical", Box{0, 0, 10, 10}, Box{0, 0, 10, 10}, 1},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 10, 10}, 0},
		{"touching", Box{0, 0, 10, 10}, Box{10, 0, 10, 10}, 0},
		{"half", Box{0, 0, 10, 10}, Box{5, 0, 10, 10}, 50.0 / 150.0},
		{"degenerate", Box{0, 0, 0, 10}, Box{0, 0, 10, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("IoU = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNonMaxSuppression(t *testing.T) {
	dets := []Detection{
		{Label: "sofa", Box: Box{0, 0, 100, 50}, Confidence: 0.7},
		{Label: "sofa", Box: Box{5, 0, 100, 50}, Confidence: 0.9},
		{Label: "bed", Box: Box{5, 0, 100, 50}, Confidence: 0.6},
		{Label: "sofa", Box: Box{300, 300, 50, 50}, Confidence: 0.8},
	}

	kept := NonMaxSuppression(dets, DefaultIoUThreshold)
	if len(kept) != 3 {
		t.Fatalf("expected 3 detections, got %d: %+v", len(kept), kept)
	}
	if kept[0].Confidence != 0.9 || kept[1].Confidence != 0.8 || kept[2].Label != "bed" {
		t.Errorf("unexpected order: %+v", kept)
	}
	if dets[0].Confidence != 0.7 {
		t.Error("input slice reordered")
	}
}

func TestNonMaxSuppression_Empty(t *testing.T) {
	if kept := NonMaxSuppression(nil, DefaultIoUThreshold); len(kept) != 0 {
		t.Errorf("expected no detections, got %d", len(kept))
	}
}

func TestFilterLiving(t *testing.T) {
	dets := []Detection{
		{Label: "kitchen", Confidence: 0.9},
		{Label: "sofa", Confidence: 0.8},
		{Label: "bathroom", Confidence: 0.7},
	}

	living := FilterLiving(dets)
	if len(living) != 1 || living[0].Label != "sofa" {
		t.Fatalf("expected only sofa, got %+v", living)
	}
}

func TestIsLiving(t *testing.T) {
	tests := map[string]bool{
		"sofa":          true,
		"bed":           true,
		"hall":          false,
		"corridor":      false,
		"kitchen table": true,
	}
	for label, want := range tests {
		if got := IsLiving(label); got != want {
			t.Errorf("IsLiving(%q) = %v, want %v", label, got, want)
		}
	}
}

func TestClassifier_Living(t *testing.T) {
	c := NewClassifier(&fakeDetector{dets: []Detection{
		{Label: "hall"},
		{Label: "bed", Box: Box{1, 2, 3, 4}},
	}})

	living, err := c.Living(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if err != nil {
		t.Fatalf("Living failed: %v", err)
	}
	if len(living) != 1 || living[0].Label != "bed" {
		t.Errorf("unexpected living detections: %+v", living)
	}

	boom := errors.New("boom")
	c = NewClassifier(&fakeDetector{err: boom})
	if _, err := c.Living(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1))); !errors.Is(err, boom) {
		t.Errorf("expected wrapped detector error, got %v", err)
	}
}

func TestAnnotations(t *testing.T) {
	anns := Annotations([]Detection{{Label: "sofa", Box: Box{X: 10, Y: 20, W: 30, H: 40}}})
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if anns[0].Label != "sofa" || anns[0].Rect != image.Rect(10, 20, 40, 60) {
		t.Errorf("unexpected annotation: %+v", anns[0])
	}
}

func TestLoadLabels(t *testing.T) {
	labels, err := LoadLabels(strings.NewReader("person\n  sofa \n\nbed\n\n"))
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	want := []string{"person", "sofa", "", "bed"}
	if len(labels) != len(want) {
		t.Fatalf("labels: got %q, want %q", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}

	if _, err := LoadLabels(strings.NewReader("\n\n")); err == nil {
		t.Error("LoadLabels should fail for an empty list")
	}
}

func TestLoadLabelsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coco.names")
	if err := os.WriteFile(path, []byte("sofa\r\nbed\r\n"), 0644); err != nil {
		t.Fatalf("failed to write labels: %v", err)
	}

	labels, err := LoadLabelsFile(path)
	if err != nil {
		t.Fatalf("LoadLabelsFile failed: %v", err)
	}
	if len(labels) != 2 || labels[0] != "sofa" || labels[1] != "bed" {
		t.Errorf("labels: got %q", labels)
	}

	if _, err := LoadLabelsFile(filepath.Join(t.TempDir(), "missing.names")); err == nil {
		t.Error("LoadLabelsFile should fail for a missing file")
	}
}

func TestNewONNXDetector_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	labels := filepath.Join(dir, "labels.txt")
	if err := os.WriteFile(labels, []byte("sofa\n"), 0644); err != nil {
		t.Fatalf("failed to write labels: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no model", Config{LabelsPath: labels}},
		{"no labels", Config{ModelPath: filepath.Join(dir, "model.onnx")}},
		{"missing labels", Config{ModelPath: filepath.Join(dir, "model.onnx"), LabelsPath: filepath.Join(dir, "nope.txt")}},
		{"missing model", Config{ModelPath: filepath.Join(dir, "model.onnx"), LabelsPath: labels}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewONNXDetector(tt.cfg); err == nil {
				t.Error("NewONNXDetector should fail")
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	if cfg.Enabled() {
		t.Error("empty config should be disabled")
	}
	cfg.setDefaults()
	if cfg.InputSize != 416 || cfg.NumBoxes != DefaultNumBoxes || cfg.IoUThreshold != 0.4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.InputName != "images" || cfg.OutputName != "output0" {
		t.Errorf("unexpected tensor names: %+v", cfg)
	}
}

func TestFillInput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 255, 0, 51, 255

	buf := make([]float32, 3*4)
	fillInput(buf, img, 2)

	if buf[0] != 1 || buf[4] != 0 || buf[8] != 0.2 {
		t.Errorf("planar layout wrong: r=%v g=%v b=%v", buf[0], buf[4], buf[8])
	}
}
