// Package ocr reads room labels off blueprints using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). An Engine
// is created once with the configured languages and reused for every image;
// Recognize returns the recognized lines (or words) as area.Token values in
// reading order.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data files are required for each language. The default
// "eng+rus" needs both:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng tesseract-ocr-rus
//
// # Error Handling
//
// New fails when language data is missing or Tesseract cannot initialize.
// Recognize fails when the image cannot be encoded or Tesseract rejects it;
// the batch pipeline excludes such images from the results.
package ocr
