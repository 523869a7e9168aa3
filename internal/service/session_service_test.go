package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/repository"
	"github.com/steptracker/steptracker-backend-go/internal/stream"
	"github.com/steptracker/steptracker-backend-go/internal/walk"
)

func newSessionService(t *testing.T) (*SessionService, *repository.WalkRepository, *stream.Hub) {
	t.Helper()

	walkRepo := repository.NewWalkRepository(testDB(t))
	hub := stream.NewHub()
	svc := NewSessionService(walk.NewFilter(50), walk.PauseIncluded, walkRepo, hub)
	return svc, walkRepo, hub
}

func sessionSample(lat, lon float64, ts int64) models.GeoSample {
	acc := 10.0
	alt := 35.0
	return models.GeoSample{
		Latitude:       lat,
		Longitude:      lon,
		AltitudeMeters: &alt,
		AccuracyMeters: &acc,
		TimestampMs:    ts,
	}
}

func TestSessionLifecyclePersistsWalk(t *testing.T) {
	svc, walkRepo, _ := newSessionService(t)

	snap, err := svc.Start("user-1", models.WalkModeAutoRoute)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.State != walk.StateActive || snap.WalkMode != models.WalkModeAutoRoute {
		t.Fatalf("start snapshot wrong: %+v", snap)
	}

	if _, _, err := svc.Ingest("user-1", sessionSample(48.8566, 2.3522, 1000)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, _, err := svc.Ingest("user-1", sessionSample(48.8570, 2.3530, 6000)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := svc.RecordSteps("user-1", 120340); err != nil {
		t.Fatalf("steps baseline: %v", err)
	}
	if _, err := svc.RecordSteps("user-1", 120590); err != nil {
		t.Fatalf("steps: %v", err)
	}

	stored, err := svc.Stop("user-1")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stored.ID == "" {
		t.Fatalf("stopped walk has no id")
	}
	if stored.Steps != 250 {
		t.Fatalf("steps = %d, want 250", stored.Steps)
	}
	if stored.DistanceMeters <= 0 {
		t.Fatalf("distance not accumulated: %v", stored.DistanceMeters)
	}

	persisted, err := walkRepo.GetByID("user-1", stored.ID)
	if err != nil {
		t.Fatalf("get persisted: %v", err)
	}
	if persisted == nil || len(persisted.Route) != 2 {
		t.Fatalf("persisted walk wrong: %+v", persisted)
	}

	// The session is gone; state reads back as idle.
	if got := svc.Snapshot("user-1"); got.State != walk.StateIdle {
		t.Fatalf("post-stop state = %s, want IDLE", got.State)
	}
}

func TestSessionSecondStartConflicts(t *testing.T) {
	svc, _, _ := newSessionService(t)

	if _, err := svc.Start("user-1", models.WalkModeJustWalk); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Start("user-1", models.WalkModeJustWalk); !errors.Is(err, walk.ErrInvalidState) {
		t.Fatalf("second start: got %v, want invalid state", err)
	}
	// A different user is unaffected.
	if _, err := svc.Start("user-2", models.WalkModeJustWalk); err != nil {
		t.Fatalf("other user start: %v", err)
	}
}

func TestSessionOperationsWithoutSession(t *testing.T) {
	svc, _, _ := newSessionService(t)

	if _, _, err := svc.Ingest("user-1", sessionSample(48.85, 2.35, 1000)); !errors.Is(err, walk.ErrInvalidState) {
		t.Fatalf("ingest: got %v, want invalid state", err)
	}
	if _, err := svc.Pause("user-1"); !errors.Is(err, walk.ErrInvalidState) {
		t.Fatalf("pause: got %v, want invalid state", err)
	}
	if _, err := svc.Stop("user-1"); !errors.Is(err, walk.ErrInvalidState) {
		t.Fatalf("stop: got %v, want invalid state", err)
	}
	if got := svc.Snapshot("user-1"); got.State != walk.StateIdle {
		t.Fatalf("snapshot state = %s, want IDLE", got.State)
	}
}

func TestSessionPauseDiscardsSamples(t *testing.T) {
	svc, _, _ := newSessionService(t)

	if _, err := svc.Start("user-1", models.WalkModeJustWalk); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.Ingest("user-1", sessionSample(48.8566, 2.3522, 1000)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := svc.Pause("user-1"); err != nil {
		t.Fatalf("pause: %v", err)
	}

	snap, accepted, err := svc.Ingest("user-1", sessionSample(48.8570, 2.3530, 6000))
	if err != nil {
		t.Fatalf("paused ingest: %v", err)
	}
	if accepted {
		t.Fatalf("paused sample must be discarded")
	}
	if snap.AcceptedSamples != 1 {
		t.Fatalf("accepted samples = %d, want 1", snap.AcceptedSamples)
	}

	if _, err := svc.Resume("user-1"); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, accepted, _ = svc.Ingest("user-1", sessionSample(48.8570, 2.3530, 6000)); !accepted {
		t.Fatalf("post-resume sample rejected")
	}
}

// flakyWalkStore fails the first n creates, then delegates to the
// real repository.
type flakyWalkStore struct {
	repo     *repository.WalkRepository
	failures int
}

func (f *flakyWalkStore) Create(session models.WalkSession) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("disk I/O error")
	}
	return f.repo.Create(session)
}

func TestSessionStopRetriesAfterPersistFailure(t *testing.T) {
	walkRepo := repository.NewWalkRepository(testDB(t))
	store := &flakyWalkStore{repo: walkRepo, failures: 1}
	svc := NewSessionService(walk.NewFilter(50), walk.PauseIncluded, store, stream.NewHub())

	if _, err := svc.Start("user-1", models.WalkModeJustWalk); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.Ingest("user-1", sessionSample(48.8566, 2.3522, 1000)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := svc.RecordSteps("user-1", 1000); err != nil {
		t.Fatalf("steps: %v", err)
	}
	if _, err := svc.RecordSteps("user-1", 1250); err != nil {
		t.Fatalf("steps: %v", err)
	}

	_, err := svc.Stop("user-1")
	if err == nil {
		t.Fatalf("expected persistence failure")
	}
	if errors.Is(err, walk.ErrInvalidState) {
		t.Fatalf("persistence failure surfaced as invalid state: %v", err)
	}

	// The finalized walk survives the failure; a retried stop persists
	// it instead of reporting no session.
	stored, err := svc.Stop("user-1")
	if err != nil {
		t.Fatalf("retried stop: %v", err)
	}
	if stored.ID == "" || stored.Steps != 250 {
		t.Fatalf("retried stop lost the walk: %+v", stored)
	}

	persisted, err := walkRepo.GetByID("user-1", stored.ID)
	if err != nil {
		t.Fatalf("get persisted: %v", err)
	}
	if persisted == nil || len(persisted.Route) != 1 {
		t.Fatalf("persisted walk wrong: %+v", persisted)
	}

	// Only now is the slot free again.
	if got := svc.Snapshot("user-1"); got.State != walk.StateIdle {
		t.Fatalf("post-retry state = %s, want IDLE", got.State)
	}
	if _, err := svc.Start("user-1", models.WalkModeJustWalk); err != nil {
		t.Fatalf("restart after retry: %v", err)
	}
}

func TestSessionStartConflictsWhileStopUnpersisted(t *testing.T) {
	walkRepo := repository.NewWalkRepository(testDB(t))
	store := &flakyWalkStore{repo: walkRepo, failures: 1}
	svc := NewSessionService(walk.NewFilter(50), walk.PauseIncluded, store, stream.NewHub())

	if _, err := svc.Start("user-1", models.WalkModeJustWalk); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Stop("user-1"); err == nil {
		t.Fatalf("expected persistence failure")
	}

	// The unpersisted walk still occupies the session slot.
	if _, err := svc.Start("user-1", models.WalkModeJustWalk); !errors.Is(err, walk.ErrInvalidState) {
		t.Fatalf("start over unpersisted stop: got %v, want invalid state", err)
	}
	if got := svc.Snapshot("user-1"); got.State != walk.StateStopped {
		t.Fatalf("state = %s, want STOPPED", got.State)
	}
}

func TestSessionBroadcastsSnapshots(t *testing.T) {
	svc, _, hub := newSessionService(t)

	client := hub.Register("user-1")
	defer hub.Unregister(client)

	if _, err := svc.Start("user-1", models.WalkModeJustWalk); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case payload := <-client.Send:
		var snap walk.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			t.Fatalf("unmarshal snapshot: %v", err)
		}
		if snap.State != walk.StateActive {
			t.Fatalf("broadcast state = %s, want ACTIVE", snap.State)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("no snapshot broadcast after start")
	}
}
