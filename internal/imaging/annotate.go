package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	boxThickness = 2
	labelOffset  = 10 // label baseline sits this many pixels above the box
)

// Annotation is a labelled rectangle to draw over a blueprint.
type Annotation struct {
	Label string
	Rect  image.Rectangle
}

// Annotate returns a copy of img with every annotation drawn as a
// rectangle outline and its label written above the top-left corner.
// Rectangles are clipped to the image bounds; the source is not modified.
func Annotate(img image.Image, annotations []Annotation, c color.Color) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, a := range annotations {
		r := a.Rect.Intersect(bounds)
		if r.Empty() {
			continue
		}
		drawRect(result, r, c)
		if a.Label != "" {
			drawLabel(result, a.Rect.Min.X, a.Rect.Min.Y, a.Label, c)
		}
	}

	return result
}

// SaveAnnotated writes an annotated image; the format follows the file
// extension of path.
func SaveAnnotated(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}
	return nil
}

// drawRect draws an outline boxThickness pixels wide just inside r.
func drawRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for t := 0; t < boxThickness; t++ {
		x1, y1 := r.Min.X+t, r.Min.Y+t
		x2, y2 := r.Max.X-1-t, r.Max.Y-1-t
		if x1 > x2 || y1 > y2 {
			return
		}
		for x := x1; x <= x2; x++ {
			img.Set(x, y1, c)
			img.Set(x, y2, c)
		}
		for y := y1; y <= y2; y++ {
			img.Set(x1, y, c)
			img.Set(x2, y, c)
		}
	}
}

// drawLabel writes text with its baseline labelOffset pixels above (x, y).
// When that would leave the image, the label moves inside the box.
func drawLabel(img *image.RGBA, x, y int, text string, c color.Color) {
	face := basicfont.Face7x13
	baseline := y - labelOffset
	if baseline-face.Ascent < img.Bounds().Min.Y {
		baseline = y + face.Ascent + boxThickness
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)},
	}
	d.DrawString(text)
}
