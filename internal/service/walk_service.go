package service

import (
	"fmt"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/repository"
	"github.com/steptracker/steptracker-backend-go/internal/walk"
)

// WalkService handles business logic for stored walk sessions
type WalkService struct {
	walkRepo *repository.WalkRepository
}

// NewWalkService creates a new walk service
func NewWalkService(walkRepo *repository.WalkRepository) *WalkService {
	return &WalkService{walkRepo: walkRepo}
}

// Create validates and stores a finished walk. Duration, pace and the
// elevation figures are derived here from the time range and route,
// with the same accumulation rules the live tracker uses.
func (s *WalkService) Create(userID string, req models.CreateWalkRequest) (*models.WalkSession, error) {
	mode := req.WalkMode
	if mode == "" {
		mode = models.WalkModeJustWalk
	}
	if !models.ValidWalkMode(mode) {
		return nil, models.Validationf("unknown walk mode %q", mode)
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return nil, models.Validationf("endTime before startTime")
	}
	for i, c := range req.RouteCoordinates {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return nil, models.Validationf("routeCoordinates[%d] out of range", i)
		}
	}

	session := models.WalkSession{
		UserID:        userID,
		Name:          req.Name,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Steps:         req.Steps,
		WalkMode:      mode,
		Notes:         req.Notes,
		IsPublic:      req.IsPublic,
		IsSaved:       true,
		RoutePolyline: req.RoutePolyline,
		Route:         req.RouteCoordinates,
	}

	if req.EndTime != nil {
		session.DurationSeconds = int64(req.EndTime.Sub(req.StartTime) / time.Second)
	}

	var acc walk.AccumulatorState
	for _, c := range req.RouteCoordinates {
		acc = acc.Update(models.GeoSample{
			Latitude:       c.Latitude,
			Longitude:      c.Longitude,
			AltitudeMeters: c.ElevationMeters,
			TimestampMs:    c.TimestampMs,
		})
	}
	session.ElevationGainM = acc.ElevationGainM
	if max, ok := acc.MaxElevation(); ok {
		session.MaxElevationMeters = &max
	}

	if req.DistanceMeters != nil {
		session.DistanceMeters = *req.DistanceMeters
	} else {
		session.DistanceMeters = acc.DistanceM
	}
	if session.DurationSeconds > 0 {
		if pace, ok := walk.AveragePace(session.DistanceMeters, session.DurationSeconds); ok {
			session.AveragePaceMinKm = &pace
		}
	}

	id, err := s.walkRepo.Create(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create walk: %w", err)
	}
	return s.mustGet(userID, id)
}

// List returns one page of the user's walks, newest first, with the
// total row count for the pager. startDate/endDate filter on the walk's
// start time and may be empty.
func (s *WalkService) List(userID string, page, pageSize int, startDate, endDate string) ([]models.WalkSession, int64, error) {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, 0, models.Validationf("invalid date %q", d)
		}
	}
	return s.walkRepo.List(userID, page, pageSize, startDate, endDate)
}

// Get returns one walk with its full route.
func (s *WalkService) Get(userID, id string) (*models.WalkSession, error) {
	session, err := s.walkRepo.GetByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get walk: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("walk %s: %w", id, models.ErrNotFound)
	}
	return session, nil
}

// Update changes a walk's metadata. Only name, notes and the two
// visibility flags are mutable; measurements are immutable history.
func (s *WalkService) Update(userID, id string, req models.UpdateWalkRequest) (*models.WalkSession, error) {
	ok, err := s.walkRepo.UpdateMeta(userID, id, req.Name, req.Notes, req.IsPublic, req.IsSaved)
	if err != nil {
		return nil, fmt.Errorf("failed to update walk: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("walk %s: %w", id, models.ErrNotFound)
	}
	return s.mustGet(userID, id)
}

// Delete removes a walk and its route.
func (s *WalkService) Delete(userID, id string) error {
	ok, err := s.walkRepo.Delete(userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete walk: %w", err)
	}
	if !ok {
		return fmt.Errorf("walk %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// Summary aggregates all of the user's stored walks.
func (s *WalkService) Summary(userID string) (models.WalkSummary, error) {
	return s.walkRepo.Summary(userID)
}

// ExportGPX renders a walk's route as a GPX 1.1 track.
func (s *WalkService) ExportGPX(userID, id string) ([]byte, string, error) {
	session, err := s.Get(userID, id)
	if err != nil {
		return nil, "", err
	}

	segment := gpx.GPXTrackSegment{}
	for _, c := range session.Route {
		point := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  c.Latitude,
				Longitude: c.Longitude,
			},
			Timestamp: session.StartTime.Add(time.Duration(c.TimestampMs) * time.Millisecond),
		}
		if c.ElevationMeters != nil {
			point.Elevation = *gpx.NewNullableFloat64(*c.ElevationMeters)
		}
		segment.AppendPoint(&point)
	}

	name := session.Name
	if name == "" {
		name = "Walk " + session.StartTime.Format(models.DateLayout)
	}
	doc := &gpx.GPX{
		Version: "1.1",
		Creator: "steptracker-backend",
		Name:    name,
		Time:    &session.StartTime,
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Segments: []gpx.GPXTrackSegment{segment},
		}},
	}

	out, err := gpx.ToXml(doc, gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, "", fmt.Errorf("failed to render gpx: %w", err)
	}

	filename := fmt.Sprintf("walk-%s.gpx", session.StartTime.Format(models.DateLayout))
	return out, filename, nil
}

func (s *WalkService) mustGet(userID, id string) (*models.WalkSession, error) {
	session, err := s.walkRepo.GetByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload walk: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("walk %s: %w", id, models.ErrNotFound)
	}
	return session, nil
}
