package models

import "time"

// CreateWalkRequest is the payload for storing a finished walk. The
// derived fields (duration, pace, elevation) are computed server side
// from the route and time range, never trusted from the client.
type CreateWalkRequest struct {
	Name             string            `json:"name"`
	StartTime        time.Time         `json:"startTime" binding:"required"`
	EndTime          *time.Time        `json:"endTime"`
	DistanceMeters   *float64          `json:"distanceMeters" binding:"omitempty,min=0"`
	Steps            int               `json:"steps" binding:"min=0"`
	WalkMode         string            `json:"walkMode"`
	Notes            string            `json:"notes"`
	IsPublic         bool              `json:"isPublic"`
	RoutePolyline    string            `json:"routePolyline"`
	RouteCoordinates []RouteCoordinate `json:"routeCoordinates" binding:"omitempty,dive"`
}

// UpdateWalkRequest carries the mutable metadata of a stored walk.
// Pointer fields distinguish "leave unchanged" from an explicit value.
type UpdateWalkRequest struct {
	Name     *string `json:"name"`
	Notes    *string `json:"notes"`
	IsPublic *bool   `json:"isPublic"`
	IsSaved  *bool   `json:"isSaved"`
}

// StartSessionRequest begins a live tracking session.
type StartSessionRequest struct {
	WalkMode string `json:"walkMode"`
}

// StepCountRequest reports the device's cumulative step counter. The
// counter is monotonic since device boot, not a delta.
type StepCountRequest struct {
	CounterValue int64 `json:"counterValue" binding:"min=0"`
}

// SyncRequest is a batch of per-day records from the device.
type SyncRequest struct {
	Steps []StepDataInput `json:"steps" binding:"required,dive"`
}
