package walk

import (
	"math"
	"testing"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/spatial"
)

func sampleAt(lat, lon float64, alt *float64, ts int64) models.GeoSample {
	return models.GeoSample{
		Latitude:       lat,
		Longitude:      lon,
		AltitudeMeters: alt,
		AccuracyMeters: fptr(10),
		TimestampMs:    ts,
	}
}

func TestAccumulatorThreeSampleWalk(t *testing.T) {
	// Three fixes near Paris: 35m -> 40m -> 38m altitude. Only the
	// 35->40 rise counts as gain; max elevation stays 40.
	s0 := sampleAt(48.8566, 2.3522, fptr(35), 0)
	s1 := sampleAt(48.8570, 2.3530, fptr(40), 5000)
	s2 := sampleAt(48.8575, 2.3540, fptr(38), 10000)

	state := AccumulatorState{}
	state = state.Update(s0)
	if state.DistanceM != 0 {
		t.Fatalf("first sample must contribute zero distance, got %f", state.DistanceM)
	}
	state = state.Update(s1)
	state = state.Update(s2)

	wantDistance := spatial.HaversineDistance(48.8566, 2.3522, 48.8570, 2.3530) +
		spatial.HaversineDistance(48.8570, 2.3530, 48.8575, 2.3540)
	if math.Abs(state.DistanceM-wantDistance) > 1e-9 {
		t.Fatalf("distance = %f, want %f", state.DistanceM, wantDistance)
	}
	if state.ElevationGainM != 5 {
		t.Fatalf("elevation gain = %f, want 5", state.ElevationGainM)
	}
	max, ok := state.MaxElevation()
	if !ok || max != 40 {
		t.Fatalf("max elevation = %f (ok=%v), want 40", max, ok)
	}
}

func TestAccumulatorNoGainFromFirstAltitude(t *testing.T) {
	state := AccumulatorState{}
	state = state.Update(sampleAt(48.0, 2.0, fptr(100), 0))
	if state.ElevationGainM != 0 {
		t.Fatalf("gain after single sample = %f, want 0", state.ElevationGainM)
	}
}

func TestAccumulatorDescentNeverSubtracts(t *testing.T) {
	state := AccumulatorState{}
	state = state.Update(sampleAt(48.0, 2.0, fptr(100), 0))
	state = state.Update(sampleAt(48.0001, 2.0001, fptr(80), 1000))
	state = state.Update(sampleAt(48.0002, 2.0002, fptr(90), 2000))
	if state.ElevationGainM != 10 {
		t.Fatalf("gain = %f, want 10 (only the 80->90 rise)", state.ElevationGainM)
	}
}

func TestAccumulatorMissingAltitudeLeavesElevationAlone(t *testing.T) {
	state := AccumulatorState{}
	state = state.Update(sampleAt(48.0, 2.0, fptr(100), 0))
	before := state

	state = state.Update(sampleAt(48.0001, 2.0001, nil, 1000))
	if state.DistanceM <= before.DistanceM {
		t.Fatalf("distance must still advance on altitude-less sample")
	}
	if state.ElevationGainM != before.ElevationGainM {
		t.Fatalf("gain changed on altitude-less sample")
	}
	max, ok := state.MaxElevation()
	if !ok || max != 100 {
		t.Fatalf("max elevation = %f (ok=%v), want 100", max, ok)
	}

	// A later real altitude continues gain from the last real one.
	state = state.Update(sampleAt(48.0002, 2.0002, fptr(103), 2000))
	if state.ElevationGainM != 3 {
		t.Fatalf("gain = %f, want 3 (100->103 across the gap)", state.ElevationGainM)
	}
}

func TestAccumulatorUpdateDoesNotMutateInput(t *testing.T) {
	state := AccumulatorState{}
	state = state.Update(sampleAt(48.0, 2.0, fptr(10), 0))
	copyBefore := state

	_ = state.Update(sampleAt(48.1, 2.1, fptr(20), 1000))
	if state != copyBefore {
		t.Fatalf("Update mutated its receiver")
	}
}

func TestAccumulatorPairwiseSumProperty(t *testing.T) {
	// Running distance equals the sum of pairwise haversine distances
	// for any in-order accepted sequence.
	points := [][2]float64{
		{48.8566, 2.3522}, {48.8570, 2.3530}, {48.8575, 2.3540},
		{48.8580, 2.3555}, {48.8590, 2.3570}, {48.8600, 2.3600},
	}

	state := AccumulatorState{}
	var want float64
	for i, p := range points {
		state = state.Update(sampleAt(p[0], p[1], nil, int64(i)*1000))
		if i > 0 {
			want += spatial.HaversineDistance(points[i-1][0], points[i-1][1], p[0], p[1])
		}
	}
	if math.Abs(state.DistanceM-want) > 1e-9 {
		t.Fatalf("distance = %f, want %f", state.DistanceM, want)
	}
}
