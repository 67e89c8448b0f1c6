package vision

import "fmt"

// Aggregate merges per-tile results into one frame-level summary.
//
// The representative human count comes from the single highest-confidence
// successful tile, with ties keeping the lowest index. Summation is
// deliberately rejected: tiles overlap, so adding counts double-counts
// people standing in the overlap band. Failed tiles never win but are kept
// in PerSegment for inspection.
func Aggregate(results []SegmentResult) Summary {
	summary := Summary{
		PerSegment:      results,
		ConfidenceLevel: ConfidenceLow,
	}

	winner := -1
	for i, r := range results {
		if r.Failed() {
			continue
		}
		if winner < 0 || r.Confidence > results[winner].Confidence {
			winner = i
		}
	}
	if winner < 0 {
		return summary
	}

	w := results[winner]
	summary.HumanCount = w.HumanCount
	summary.KeyObservations = []string{fmt.Sprintf("%d: %s", w.HumanCount, w.Detail)}
	summary.SceneDescription = w.Detail
	summary.ConfidenceLevel = LevelFor(w.Confidence)
	return summary
}
