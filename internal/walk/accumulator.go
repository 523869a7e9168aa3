package walk

import (
	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/spatial"
)

// AccumulatorState holds the running distance and elevation totals of
// one walk. Update returns a new state and never mutates the receiver,
// so the caller threads state across the accepted sample sequence.
type AccumulatorState struct {
	DistanceM      float64
	ElevationGainM float64

	maxElevation    float64
	hasMaxElevation bool

	lastLat float64
	lastLon float64
	hasFix  bool

	lastAltitude float64
	hasAltitude  bool
}

// Update folds one accepted sample into the state.
//
// Distance grows by the haversine distance to the previous fix; the
// first fix contributes zero. Elevation gain only accumulates between
// two real altitudes in order, never from session start and never on
// descents. A sample without altitude leaves elevation state untouched
// but still advances the distance chain.
func (s AccumulatorState) Update(sample models.GeoSample) AccumulatorState {
	next := s

	if s.hasFix {
		next.DistanceM += spatial.HaversineDistance(s.lastLat, s.lastLon, sample.Latitude, sample.Longitude)
	}
	next.lastLat = sample.Latitude
	next.lastLon = sample.Longitude
	next.hasFix = true

	if sample.AltitudeMeters != nil {
		alt := *sample.AltitudeMeters
		if !s.hasMaxElevation || alt > s.maxElevation {
			next.maxElevation = alt
			next.hasMaxElevation = true
		}
		if s.hasAltitude && alt > s.lastAltitude {
			next.ElevationGainM += alt - s.lastAltitude
		}
		next.lastAltitude = alt
		next.hasAltitude = true
	}

	return next
}

// MaxElevation returns the highest altitude seen so far. The bool is
// false while no sample has carried an altitude.
func (s AccumulatorState) MaxElevation() (float64, bool) {
	return s.maxElevation, s.hasMaxElevation
}
