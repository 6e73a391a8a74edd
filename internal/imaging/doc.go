// Package imaging provides the image handling around the blueprint pipeline.
//
// It decodes input files, prepares them for OCR, scales previews of
// processed rows and draws detected furniture boxes for inspection. All
// operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Decoding
//
// Open decodes PNG and JPEG (including .jfif) files through
// github.com/disintegration/imaging and honours the EXIF orientation tag.
// IsSupported filters input paths by extension.
//
// # OCR Preparation
//
// PrepareForOCR converts to grayscale and stretches contrast using
// github.com/anthonynsimon/bild.
//
// # Previews and Annotation
//
// Preview scales an image to a fixed size and encodes it as base64 PNG.
// Annotate draws rectangle outlines with text labels (basicfont 7x13) in a
// colour parsed by ParseColor.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image
// operations are stateless and never modify their input.
package imaging
