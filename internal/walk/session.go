package walk

import (
	"errors"
	"sync"
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/models"
)

// Session states.
type State string

const (
	StateIdle    State = "IDLE"
	StateActive  State = "ACTIVE"
	StatePaused  State = "PAUSED"
	StateStopped State = "STOPPED"
)

// PausePolicy controls whether paused intervals count toward the final
// duration. The mobile client computes stop minus start without
// subtracting pauses, so PauseIncluded is the default.
type PausePolicy string

const (
	PauseIncluded PausePolicy = "included"
	PauseExcluded PausePolicy = "excluded"
)

// ErrInvalidState is returned for any operation attempted outside its
// legal state-machine transition. The operation is rejected whole;
// session state is never partially applied.
var ErrInvalidState = errors.New("invalid session state")

// Snapshot is an atomic read-only view of an aggregator. Distance and
// elevation always come from the same accumulator state, so a reader
// never observes totals from two different samples.
type Snapshot struct {
	State           State      `json:"state"`
	WalkMode        string     `json:"walkMode,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	ElapsedSeconds  int64      `json:"elapsedSeconds"`
	DistanceMeters  float64    `json:"distanceMeters"`
	Steps           int        `json:"steps"`
	MaxElevationM   *float64   `json:"maxElevationMeters,omitempty"`
	ElevationGainM  float64    `json:"elevationGainMeters"`
	AcceptedSamples int        `json:"acceptedSamples"`
}

// Aggregator owns the lifecycle of one walk session. All transitions
// and ingests go through a single mutex, which preserves arrival order
// and keeps snapshots consistent.
type Aggregator struct {
	mu     sync.Mutex
	filter Filter
	policy PausePolicy
	now    func() time.Time

	state State
	mode  string

	startTime   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	acc          AccumulatorState
	route        []models.RouteCoordinate
	lastAccepted *models.GeoSample
	accepted     int

	stepBaseline int // cumulative sensor value at first post-start reading, -1 while unset
	steps        int
}

// NewAggregator creates an idle aggregator using the given filter and
// pause policy.
func NewAggregator(filter Filter, policy PausePolicy) *Aggregator {
	if policy != PauseExcluded {
		policy = PauseIncluded
	}
	return &Aggregator{
		filter:       filter,
		policy:       policy,
		now:          time.Now,
		state:        StateIdle,
		stepBaseline: -1,
	}
}

// Start transitions IDLE -> ACTIVE, capturing the start time and
// resetting all running totals, the route buffer and the step
// baseline.
func (a *Aggregator) Start(mode string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateIdle {
		return ErrInvalidState
	}
	if !models.ValidWalkMode(mode) {
		return models.Validationf("unknown walk mode %q", mode)
	}

	a.state = StateActive
	a.mode = mode
	a.startTime = a.now()
	a.pausedTotal = 0
	a.acc = AccumulatorState{}
	a.route = nil
	a.lastAccepted = nil
	a.accepted = 0
	a.stepBaseline = -1
	a.steps = 0
	return nil
}

// Ingest runs one location fix through the filter and, if accepted,
// folds it into the accumulator and route. While PAUSED it discards
// the sample without error; outside ACTIVE/PAUSED it fails with
// ErrInvalidState. Returns whether the sample was accepted.
func (a *Aggregator) Ingest(sample models.GeoSample) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateActive:
	case StatePaused:
		return false, nil
	default:
		return false, ErrInvalidState
	}

	if !a.filter.Accept(sample, a.lastAccepted) {
		return false, nil
	}

	a.acc = a.acc.Update(sample)
	s := sample
	a.lastAccepted = &s
	a.accepted++
	a.route = append(a.route, models.RouteCoordinate{
		Latitude:        sample.Latitude,
		Longitude:       sample.Longitude,
		ElevationMeters: sample.AltitudeMeters,
		TimestampMs:     sample.TimestampMs,
		AccuracyMeters:  sample.AccuracyMeters,
	})
	return true, nil
}

// RecordStepCount feeds a cumulative lifetime step-counter reading.
// The first reading after Start becomes the baseline; the session's
// step count is the reading minus that baseline. Readings arriving
// while PAUSED are still applied, matching the device sensor which
// keeps counting.
func (a *Aggregator) RecordStepCount(counter int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateActive && a.state != StatePaused {
		return ErrInvalidState
	}
	if counter < 0 {
		return models.Validationf("step counter must be non-negative")
	}

	if a.stepBaseline < 0 {
		a.stepBaseline = counter
	}
	if counter >= a.stepBaseline {
		a.steps = counter - a.stepBaseline
	}
	return nil
}

// Pause transitions ACTIVE -> PAUSED.
func (a *Aggregator) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateActive {
		return ErrInvalidState
	}
	a.state = StatePaused
	a.pausedAt = a.now()
	return nil
}

// Resume transitions PAUSED -> ACTIVE.
func (a *Aggregator) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StatePaused {
		return ErrInvalidState
	}
	a.pausedTotal += a.now().Sub(a.pausedAt)
	a.state = StateActive
	return nil
}

// Stop finalizes the session from ACTIVE or PAUSED and returns the
// immutable WalkSession value to hand to persistence. Duration is
// wall-clock stop minus start; with PauseExcluded the accumulated
// paused time is subtracted. Average pace is defined only when
// distance is positive.
func (a *Aggregator) Stop() (models.WalkSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateActive && a.state != StatePaused {
		return models.WalkSession{}, ErrInvalidState
	}

	end := a.now()
	if a.state == StatePaused {
		a.pausedTotal += end.Sub(a.pausedAt)
	}
	a.state = StateStopped

	elapsed := end.Sub(a.startTime)
	if a.policy == PauseExcluded {
		elapsed -= a.pausedTotal
	}
	if elapsed < 0 {
		elapsed = 0
	}
	durationSec := int64(elapsed.Seconds())

	session := models.WalkSession{
		StartTime:       a.startTime,
		EndTime:         &end,
		DurationSeconds: durationSec,
		DistanceMeters:  a.acc.DistanceM,
		Steps:           a.steps,
		ElevationGainM:  a.acc.ElevationGainM,
		WalkMode:        a.mode,
		Route:           a.route,
	}
	if max, ok := a.acc.MaxElevation(); ok {
		session.MaxElevationMeters = &max
	}
	if pace, ok := AveragePace(a.acc.DistanceM, durationSec); ok {
		session.AveragePaceMinKm = &pace
	}
	return session, nil
}

// Snapshot returns a consistent view of the running session.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		State:           a.state,
		WalkMode:        a.mode,
		DistanceMeters:  a.acc.DistanceM,
		Steps:           a.steps,
		ElevationGainM:  a.acc.ElevationGainM,
		AcceptedSamples: a.accepted,
	}
	if a.state == StateIdle {
		return snap
	}

	start := a.startTime
	snap.StartTime = &start

	elapsed := a.now().Sub(a.startTime)
	if a.policy == PauseExcluded {
		elapsed -= a.pausedTotal
		if a.state == StatePaused {
			elapsed -= a.now().Sub(a.pausedAt)
		}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	snap.ElapsedSeconds = int64(elapsed.Seconds())

	if max, ok := a.acc.MaxElevation(); ok {
		snap.MaxElevationM = &max
	}
	return snap
}

// AveragePace converts distance and duration to minutes per kilometer.
// The bool is false when distance is zero, where pace is undefined.
func AveragePace(distanceM float64, durationSec int64) (float64, bool) {
	if distanceM <= 0 {
		return 0, false
	}
	return (float64(durationSec) / 60.0) / (distanceM / 1000.0), true
}
