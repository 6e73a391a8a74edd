package detection

import "sort"

// DefaultIoUThreshold is the overlap above which a weaker same-label box
// is suppressed.
const DefaultIoUThreshold = 0.4

// IoU returns the intersection over union of two boxes.
func IoU(a, b Box) float64 {
	inter := a.Rect().Intersect(b.Rect())
	if inter.Empty() {
		return 0
	}
	i := inter.Dx() * inter.Dy()
	union := a.Area() + b.Area() - i
	if union <= 0 {
		return 0
	}
	return float64(i) / float64(union)
}

// NonMaxSuppression keeps, per label, the highest-confidence boxes and
// drops any box whose IoU with an already kept box of the same label
// exceeds threshold. The result is sorted by descending confidence.
func NonMaxSuppression(detections []Detection, threshold float64) []Detection {
	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, d := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.Label == d.Label && IoU(k.Box, d.Box) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}
	return kept
}
