// Package detection finds furniture on blueprints and classifies it.
//
// ONNXDetector runs a YOLO model through ONNX Runtime (yalue/onnxruntime_go).
// Its output rows are decoded by DecodeRows: the class is the argmax of the
// class scores and only detections scoring above ConfidenceThreshold are
// kept. NonMaxSuppression then removes overlapping boxes of the same label.
//
// # Furniture Classification
//
// A detection counts as living unless its label is exactly one of
// area.ExcludedCategories. FilterLiving and Classifier apply that rule. The
// living count is reported next to the room area total and never merged
// into it.
//
// # Coordinate System
//
// Boxes are in pixels of the original image, with (0, 0) at the top-left
// corner, X increasing rightward and Y increasing downward.
//
// # Prerequisites
//
// The ONNX Runtime shared library must be installed, or its path given in
// Config.SharedLibraryPath, together with the model weights and a label
// file listing one class name per line.
package detection
