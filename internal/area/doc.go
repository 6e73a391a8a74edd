// Package area turns OCR text tokens into room area measurements.
//
// The package is free of I/O and holds every decision the pipeline makes
// about numbers found on a blueprint:
//
//   - Normalization: ParseNumbers and Candidates pull decimal numbers out of
//     free text, treating a comma as a decimal separator.
//   - Filtering: AcceptFirst keeps the first number of a token when it looks
//     like a single room's area, LabelArea applies the keyword-exclusion
//     policy used alongside furniture detection.
//   - Aggregation: Aggregate reduces the accepted measurements of one image
//     into an ImageAggregate (total area and room count).
//
// # Area Range
//
// A room area is accepted only when it lies strictly between MinArea and
// MaxArea square meters. Anything else on a plan (page numbers, scale
// annotations, dimensions in millimeters) falls outside that range.
//
// # Known Limitation
//
// AcceptFirst looks only at the first number of a token. A label such as
// "3 Спальня 14.2" where a room index precedes the area yields 3 rather
// than 14.2, since only the leading number is tested and the rest of the
// token is ignored. Labels are read this way historically and the
// behaviour is kept.
//
// # Excluded Categories
//
// Kitchens, bathrooms, halls and corridors are not living space. Their
// names are listed in ExcludedCategories and are shared with the furniture
// classifier in the detection package. AcceptFirst also recognizes the
// Russian labels used on plans ("Кухня 8" is never counted as living area),
// while LabelArea matches the English keywords only.
package area
