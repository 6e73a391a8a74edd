package detection

import "fmt"

// boxFields is the number of leading values in a prediction row:
// cx, cy, w, h and objectness. Class scores follow.
const boxFields = 5

// DecodeRows converts prediction rows of the form
// [cx, cy, w, h, objectness, class scores...] with coordinates normalised
// to 0..1 into detections on a width x height image.
//
// The class is the argmax of the class scores and the confidence is that
// score; rows at or below ConfidenceThreshold are dropped. Objectness is
// not used. Boxes are truncated to whole pixels. Class indices outside
// labels are named "class N".
func DecodeRows(rows [][]float32, width, height int, labels []string) []Detection {
	var dets []Detection
	for _, row := range rows {
		if len(row) <= boxFields {
			continue
		}
		scores := row[boxFields:]
		classID := 0
		for i, s := range scores {
			if s > scores[classID] {
				classID = i
			}
		}
		confidence := float64(scores[classID])
		if confidence <= ConfidenceThreshold {
			continue
		}

		cx := int(row[0] * float32(width))
		cy := int(row[1] * float32(height))
		w := int(row[2] * float32(width))
		h := int(row[3] * float32(height))

		dets = append(dets, Detection{
			Label:      labelFor(labels, classID),
			Box:        Box{X: int(float64(cx) - float64(w)/2), Y: int(float64(cy) - float64(h)/2), W: w, H: h},
			Confidence: confidence,
		})
	}
	return dets
}

// SplitRows slices a flat [numBoxes * rowSize] output into rows. When
// pixelScale is positive the box fields are divided by it, converting
// coordinates given in model input pixels to normalised form.
func SplitRows(data []float32, numBoxes, rowSize int, pixelScale float32) ([][]float32, error) {
	if numBoxes <= 0 || rowSize <= boxFields {
		return nil, fmt.Errorf("invalid output layout %dx%d", numBoxes, rowSize)
	}
	if len(data) != numBoxes*rowSize {
		return nil, fmt.Errorf("unexpected output length: got %d, want %d", len(data), numBoxes*rowSize)
	}

	rows := make([][]float32, numBoxes)
	for i := range rows {
		row := data[i*rowSize : (i+1)*rowSize]
		if pixelScale > 0 {
			scaled := make([]float32, rowSize)
			copy(scaled, row)
			for j := 0; j < 4; j++ {
				scaled[j] /= pixelScale
			}
			row = scaled
		}
		rows[i] = row
	}
	return rows, nil
}

func labelFor(labels []string, classID int) string {
	if classID >= 0 && classID < len(labels) {
		return labels[classID]
	}
	return fmt.Sprintf("class %d", classID)
}
