package models

import "time"

// Walk modes, matching the mobile client's selector.
const (
	WalkModeAutoRoute = "AUTO_ROUTE"
	WalkModeDrawRoute = "DRAW_ROUTE"
	WalkModeJustWalk  = "JUST_WALK"
)

// ValidWalkMode reports whether mode is one of the known walk modes.
func ValidWalkMode(mode string) bool {
	switch mode {
	case WalkModeAutoRoute, WalkModeDrawRoute, WalkModeJustWalk:
		return true
	}
	return false
}

// WalkSession is one finished (or stored) walk activity. The ID is
// assigned at persistence time and is empty for an in-memory session
// that has not been saved yet. AveragePace is minutes per kilometer
// and is nil when the session covered no distance.
type WalkSession struct {
	ID                 string            `json:"id,omitempty"`
	UserID             string            `json:"-"`
	Name               string            `json:"name,omitempty"`
	StartTime          time.Time         `json:"startTime"`
	EndTime            *time.Time        `json:"endTime,omitempty"`
	DurationSeconds    int64             `json:"durationSeconds"`
	DistanceMeters     float64           `json:"distanceMeters"`
	Steps              int               `json:"steps"`
	AveragePaceMinKm   *float64          `json:"averagePaceMinutesPerKm,omitempty"`
	MaxElevationMeters *float64          `json:"maxElevationMeters,omitempty"`
	ElevationGainM     float64           `json:"elevationGainMeters"`
	WalkMode           string            `json:"walkMode"`
	Notes              string            `json:"notes,omitempty"`
	IsPublic           bool              `json:"isPublic"`
	IsSaved            bool              `json:"isSaved"`
	RoutePolyline      string            `json:"routePolyline,omitempty"`
	Route              []RouteCoordinate `json:"routeCoordinates,omitempty"`
	CreatedAt          time.Time         `json:"createdAt,omitempty"`
}

// WalkSummary aggregates a user's stored walks for the history screen.
type WalkSummary struct {
	TotalWalks           int            `json:"totalWalks"`
	TotalDistanceMeters  float64        `json:"totalDistanceMeters"`
	TotalDurationSeconds int64          `json:"totalDurationSeconds"`
	AveragePaceMinKm     float64        `json:"averagePaceMinutesPerKm"`
	LongestWalk          *WalkHighlight `json:"longestWalk"`
	FastestWalk          *WalkHighlight `json:"fastestWalk"`
}

// WalkHighlight is the id/name/value triple shown for a record walk.
type WalkHighlight struct {
	ID             string    `json:"id"`
	Name           string    `json:"name,omitempty"`
	DistanceMeters float64   `json:"distanceMeters,omitempty"`
	PaceMinKm      float64   `json:"averagePaceMinutesPerKm,omitempty"`
	Date           time.Time `json:"date"`
}
