package vision

import "testing"

func TestAggregateTieBreaksOnFirstIndex(t *testing.T) {
	results := []SegmentResult{
		{HumanCount: 2, Detail: "two people by the fence", Confidence: 0.9, Safety: SafetySafe},
		{HumanCount: 5, Detail: "five people in the clearing", Confidence: 0.9, Safety: SafetySafe},
		{HumanCount: 1, Detail: "one person", Confidence: 0.5, Safety: SafetySafe},
	}

	summary := Aggregate(results)

	if summary.HumanCount != 2 {
		t.Errorf("HumanCount = %d, want 2 from the first max-confidence tile", summary.HumanCount)
	}
	if len(summary.KeyObservations) != 1 || summary.KeyObservations[0] != "2: two people by the fence" {
		t.Errorf("KeyObservations = %v", summary.KeyObservations)
	}
	if summary.ConfidenceLevel != ConfidenceHigh {
		t.Errorf("ConfidenceLevel = %s, want high", summary.ConfidenceLevel)
	}
}

func TestAggregateSkipsFailedSegments(t *testing.T) {
	results := []SegmentResult{
		{RawText: "Error: timeout", Safety: SafetyUnknown},
		{HumanCount: 1, Detail: "one person waving", Confidence: 0.6, Safety: SafetySafe},
	}

	summary := Aggregate(results)

	if summary.HumanCount != 1 {
		t.Errorf("HumanCount = %d, want 1 from the surviving tile", summary.HumanCount)
	}
	if summary.ConfidenceLevel != ConfidenceMedium {
		t.Errorf("ConfidenceLevel = %s, want medium", summary.ConfidenceLevel)
	}
	if len(summary.PerSegment) != 2 {
		t.Errorf("PerSegment length = %d, failed tiles must be retained", len(summary.PerSegment))
	}
}

func TestAggregateNoResults(t *testing.T) {
	summary := Aggregate(nil)

	if summary.HumanCount != 0 {
		t.Errorf("HumanCount = %d, want 0", summary.HumanCount)
	}
	if len(summary.KeyObservations) != 0 {
		t.Errorf("KeyObservations = %v, want none", summary.KeyObservations)
	}
	if summary.ConfidenceLevel != ConfidenceLow {
		t.Errorf("ConfidenceLevel = %s, want low", summary.ConfidenceLevel)
	}
}

func TestAggregateAllFailed(t *testing.T) {
	results := []SegmentResult{
		{RawText: "Error: timeout", Safety: SafetyUnknown},
		{RawText: "Error: rate limited", Safety: SafetyUnknown},
	}

	summary := Aggregate(results)

	if summary.HumanCount != 0 || len(summary.KeyObservations) != 0 {
		t.Errorf("all-failed frame produced observations: %+v", summary)
	}
	if summary.ConfidenceLevel != ConfidenceLow {
		t.Errorf("ConfidenceLevel = %s, want low", summary.ConfidenceLevel)
	}
	if len(summary.PerSegment) != 2 {
		t.Errorf("PerSegment length = %d, want 2", len(summary.PerSegment))
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceLevel
	}{
		{1.0, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.79, ConfidenceMedium},
		{0.56, ConfidenceMedium},
		{0.5, ConfidenceMedium},
		{0.49, ConfidenceLow},
		{0.0, ConfidenceLow},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.confidence); got != tt.want {
			t.Errorf("LevelFor(%v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}
