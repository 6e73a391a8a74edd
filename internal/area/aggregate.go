package area

// ImageAggregate summarizes the accepted areas of one image.
type ImageAggregate struct {
	SourceName string  `json:"source_name"`
	TotalArea  float64 `json:"total_area"`
	RoomCount  int     `json:"room_count"`
	SourcePath string  `json:"source_path"`
}

// Aggregate sums measurements into an ImageAggregate. With no measurements
// the total is 0 and the count is 0.
func Aggregate(name, path string, measurements []AreaMeasurement) ImageAggregate {
	total := 0.0
	for _, m := range measurements {
		total += m.Value
	}
	return ImageAggregate{
		SourceName: name,
		TotalArea:  total,
		RoomCount:  len(measurements),
		SourcePath: path,
	}
}

// SumLabeled returns the total of labeled areas.
func SumLabeled(areas []LabeledArea) float64 {
	total := 0.0
	for _, a := range areas {
		total += a.Value
	}
	return total
}
