// Package stream validates chunk-sequence continuity and keeps a bounded
// history of fused assessments for trend queries.
//
// The tracker never rejects a chunk. Sequence breaks and timing gaps are
// logged and counted, then the tracker resynchronizes to whatever arrived:
// a drone on a flaky uplink drops and reorders chunks routinely, and stale
// expectations would turn every later chunk into a false alarm.
package stream

// Trend is the direction of change of a tracked metric.
type Trend string

const (
	TrendIncreasing   Trend = "increasing"
	TrendDecreasing   Trend = "decreasing"
	TrendStable       Trend = "stable"
	TrendEscalating   Trend = "escalating"
	TrendDeescalating Trend = "deescalating"
)
