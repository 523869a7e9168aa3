package models

import "time"

// DateLayout is the calendar-day key format used throughout step
// storage and the statistics engine.
const DateLayout = "2006-01-02"

// StepData is one calendar day's aggregate for one user. At most one
// record exists per (user, date); a missing date means zero steps.
type StepData struct {
	Date          string    `json:"date"`
	Steps         int       `json:"steps"`
	DistanceM     float64   `json:"distanceMeters"`
	Calories      int       `json:"calories"`
	ActiveMinutes int       `json:"activeMinutes"`
	UpdatedAt     time.Time `json:"-"`
}

// StepDataInput is one device-reported day inside a sync batch.
// Optional fields are pointers: nil means the device did not report a
// value and any stored value must be retained.
type StepDataInput struct {
	Date          string   `json:"date" binding:"required"`
	Steps         int      `json:"steps" binding:"min=0,max=100000"`
	DistanceM     *float64 `json:"distanceMeters,omitempty" binding:"omitempty,min=0"`
	Calories      *int     `json:"calories,omitempty" binding:"omitempty,min=0"`
	ActiveMinutes *int     `json:"activeMinutes,omitempty" binding:"omitempty,min=0"`
}

// Sync actions reported back per date.
const (
	SyncActionCreated = "created"
	SyncActionUpdated = "updated"
)

// SyncResult records what the reconciler did for one date.
type SyncResult struct {
	Date   string `json:"date"`
	Action string `json:"action"`
}
