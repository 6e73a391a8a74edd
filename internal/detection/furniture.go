package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/blueprint-area/internal/area"
	"github.com/ironsheep/blueprint-area/internal/imaging"
)

// ConfidenceThreshold is the class score a detection must exceed to be kept.
const ConfidenceThreshold = 0.5

// Box is a detection box in image pixels, top-left corner plus size.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Area returns the box area in square pixels, 0 for degenerate boxes.
func (b Box) Area() int {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// Detection is one object found by the detector.
type Detection struct {
	Label      string  `json:"label"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

// Detector finds objects in an image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// IsLiving reports whether a detection label indicates a living room,
// i.e. it is not one of the excluded categories.
func IsLiving(label string) bool {
	return !area.IsExcludedCategory(label)
}

// FilterLiving keeps the detections whose label is not an excluded
// category, preserving order.
func FilterLiving(detections []Detection) []Detection {
	living := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if IsLiving(d.Label) {
			living = append(living, d)
		}
	}
	return living
}

// Classifier runs a Detector and keeps living detections only.
type Classifier struct {
	Detector Detector
}

// NewClassifier wraps d.
func NewClassifier(d Detector) *Classifier {
	return &Classifier{Detector: d}
}

// Living returns the living detections in img.
func (c *Classifier) Living(ctx context.Context, img image.Image) ([]Detection, error) {
	dets, err := c.Detector.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("furniture detection failed: %w", err)
	}
	return FilterLiving(dets), nil
}

// Annotations converts detections to labelled rectangles for drawing.
func Annotations(detections []Detection) []imaging.Annotation {
	anns := make([]imaging.Annotation, len(detections))
	for i, d := range detections {
		anns[i] = imaging.Annotation{Label: d.Label, Rect: d.Box.Rect()}
	}
	return anns
}
