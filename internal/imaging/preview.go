package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Fixed preview size shown when a processed row is selected.
const (
	PreviewWidth  = 300
	PreviewHeight = 300
)

// PreviewResult contains a scaled copy of a blueprint encoded as PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview scales img to exactly width x height (aspect ratio is not
// preserved) and returns it as base64 PNG.
func Preview(img image.Image, width, height int) (*PreviewResult, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", width, height)
	}

	scaled := imaging.Resize(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       scaled.Bounds().Dx(),
		Height:      scaled.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
