package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/repository"
)

func newWalkService(t *testing.T) *WalkService {
	t.Helper()
	return NewWalkService(repository.NewWalkRepository(testDB(t)))
}

func parisRoute() []models.RouteCoordinate {
	return []models.RouteCoordinate{
		{Latitude: 48.8566, Longitude: 2.3522, ElevationMeters: fptr(35), TimestampMs: 0},
		{Latitude: 48.8570, Longitude: 2.3530, ElevationMeters: fptr(40), TimestampMs: 60000},
		{Latitude: 48.8574, Longitude: 2.3538, ElevationMeters: fptr(38), TimestampMs: 120000},
	}
}

func TestWalkServiceCreateDerivesMeasurements(t *testing.T) {
	svc := newWalkService(t)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	created, err := svc.Create("user-1", models.CreateWalkRequest{
		Name:             "morning walk",
		StartTime:        start,
		EndTime:          &end,
		DistanceMeters:   fptr(2400),
		Steps:            3100,
		WalkMode:         models.WalkModeAutoRoute,
		RouteCoordinates: parisRoute(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.DurationSeconds != 1800 {
		t.Fatalf("duration = %d, want 1800", created.DurationSeconds)
	}
	// 30 min over 2.4 km.
	if created.AveragePaceMinKm == nil || *created.AveragePaceMinKm != 12.5 {
		t.Fatalf("pace wrong: %v", created.AveragePaceMinKm)
	}
	// Only the climb to 40 m counts; the descent to 38 m does not.
	if created.ElevationGainM != 5 {
		t.Fatalf("elevation gain = %v, want 5", created.ElevationGainM)
	}
	if created.MaxElevationMeters == nil || *created.MaxElevationMeters != 40 {
		t.Fatalf("max elevation wrong: %v", created.MaxElevationMeters)
	}
	if len(created.Route) != 3 {
		t.Fatalf("route not stored: %d points", len(created.Route))
	}
}

func TestWalkServiceCreateDistanceFallsBackToRoute(t *testing.T) {
	svc := newWalkService(t)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := svc.Create("user-1", models.CreateWalkRequest{
		StartTime:        start,
		RouteCoordinates: parisRoute(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Two ~75 m segments.
	if created.DistanceMeters < 100 || created.DistanceMeters > 250 {
		t.Fatalf("derived distance implausible: %v", created.DistanceMeters)
	}
	if created.WalkMode != models.WalkModeJustWalk {
		t.Fatalf("default mode = %s, want JUST_WALK", created.WalkMode)
	}
	// No end time, so no duration and no pace.
	if created.DurationSeconds != 0 || created.AveragePaceMinKm != nil {
		t.Fatalf("expected open-ended walk, got %+v", created)
	}
}

func TestWalkServiceCreateValidation(t *testing.T) {
	svc := newWalkService(t)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	before := start.Add(-time.Minute)

	cases := []struct {
		name string
		req  models.CreateWalkRequest
	}{
		{"bad mode", models.CreateWalkRequest{StartTime: start, WalkMode: "SPRINT"}},
		{"end before start", models.CreateWalkRequest{StartTime: start, EndTime: &before}},
		{"latitude out of range", models.CreateWalkRequest{
			StartTime:        start,
			RouteCoordinates: []models.RouteCoordinate{{Latitude: 91, Longitude: 0}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create("user-1", tc.req); !errors.Is(err, models.ErrValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestWalkServiceUpdateAndNotFound(t *testing.T) {
	svc := newWalkService(t)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := svc.Create("user-1", models.CreateWalkRequest{StartTime: start})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "renamed"
	updated, err := svc.Update("user-1", created.ID, models.UpdateWalkRequest{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("name not updated: %+v", updated)
	}

	if _, err := svc.Update("user-1", "missing", models.UpdateWalkRequest{Name: &name}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("update missing: got %v, want not found", err)
	}
	if _, err := svc.Get("user-2", created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("cross-user get: got %v, want not found", err)
	}
	if err := svc.Delete("user-1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete("user-1", created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("double delete: got %v, want not found", err)
	}
}

func TestWalkServiceExportGPX(t *testing.T) {
	svc := newWalkService(t)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := svc.Create("user-1", models.CreateWalkRequest{
		Name:             "gpx walk",
		StartTime:        start,
		RouteCoordinates: parisRoute(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	data, filename, err := svc.ExportGPX("user-1", created.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filename != "walk-2024-06-01.gpx" {
		t.Fatalf("filename = %s", filename)
	}
	body := string(data)
	for _, want := range []string{"<gpx", "<trk>", "48.8566", "2.3522"} {
		if !strings.Contains(body, want) {
			t.Fatalf("gpx output missing %q:\n%s", want, body)
		}
	}

	if _, _, err := svc.ExportGPX("user-1", "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("export missing: got %v, want not found", err)
	}
}
