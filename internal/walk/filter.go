package walk

import (
	"github.com/steptracker/steptracker-backend-go/internal/models"
)

// DefaultAccuracyThresholdM is the worst horizontal accuracy a fix may
// report and still be accepted.
const DefaultAccuracyThresholdM = 50.0

// Filter decides whether a raw location fix is usable. It keeps no
// state of its own; the caller supplies the previously accepted sample.
type Filter struct {
	AccuracyThresholdM float64
}

// NewFilter creates a filter with the given accuracy threshold.
// Non-positive thresholds fall back to the default.
func NewFilter(thresholdM float64) Filter {
	if thresholdM <= 0 {
		thresholdM = DefaultAccuracyThresholdM
	}
	return Filter{AccuracyThresholdM: thresholdM}
}

// Accept reports whether sample should be fed to the accumulator.
// A sample is rejected when it carries no accuracy, when its accuracy
// is worse than the threshold, or when its timestamp is not strictly
// after the previously accepted sample's. The first sample of a
// session (prev == nil) only has to pass the accuracy check.
func (f Filter) Accept(sample models.GeoSample, prev *models.GeoSample) bool {
	if sample.AccuracyMeters == nil || *sample.AccuracyMeters > f.AccuracyThresholdM {
		return false
	}
	if prev != nil && sample.TimestampMs <= prev.TimestampMs {
		return false
	}
	return true
}
