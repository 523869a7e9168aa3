package models

// GeoSample is a single location fix delivered by the device's
// location provider. Altitude and accuracy are optional; a nil
// pointer means the fix carried no value for that field.
type GeoSample struct {
	Latitude       float64  `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude      float64  `json:"longitude" binding:"gte=-180,lte=180"`
	AltitudeMeters *float64 `json:"altitudeMeters,omitempty"`
	AccuracyMeters *float64 `json:"accuracyMeters,omitempty"`
	TimestampMs    int64    `json:"timestampMillis"`
}

// RouteCoordinate is one stored point of a walk's route, as persisted
// alongside a walk session and returned by GET /api/walks/:id.
type RouteCoordinate struct {
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	ElevationMeters *float64 `json:"elevationMeters,omitempty"`
	TimestampMs     int64    `json:"timestamp"`
	AccuracyMeters  *float64 `json:"accuracyMeters,omitempty"`
}
