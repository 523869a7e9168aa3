package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/stream"
	"github.com/steptracker/steptracker-backend-go/internal/walk"
)

// WalkStore persists finalized sessions. Satisfied by
// *repository.WalkRepository.
type WalkStore interface {
	Create(session models.WalkSession) (string, error)
}

// SessionService owns the live tracking sessions, one aggregator per
// user. A stopped session is removed from the map only once it is
// persisted; until then the finalized value is kept so a retried stop
// re-attempts the write instead of losing the walk.
type SessionService struct {
	mu        sync.Mutex
	sessions  map[string]*walk.Aggregator
	finalized map[string]*models.WalkSession

	filter    walk.Filter
	policy    walk.PausePolicy
	walkStore WalkStore
	hub       *stream.Hub
}

// NewSessionService creates a session service. hub may be nil when no
// live streaming surface is mounted.
func NewSessionService(filter walk.Filter, policy walk.PausePolicy, walkStore WalkStore, hub *stream.Hub) *SessionService {
	return &SessionService{
		sessions:  map[string]*walk.Aggregator{},
		finalized: map[string]*models.WalkSession{},
		filter:    filter,
		policy:    policy,
		walkStore: walkStore,
		hub:       hub,
	}
}

// Start begins a new session for the user. A session already in flight
// (active or paused) makes this an invalid transition.
func (s *SessionService) Start(userID, mode string) (walk.Snapshot, error) {
	if mode == "" {
		mode = models.WalkModeJustWalk
	}

	s.mu.Lock()
	if _, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		return walk.Snapshot{}, fmt.Errorf("session already in progress: %w", walk.ErrInvalidState)
	}
	agg := walk.NewAggregator(s.filter, s.policy)
	if err := agg.Start(mode); err != nil {
		s.mu.Unlock()
		return walk.Snapshot{}, err
	}
	s.sessions[userID] = agg
	s.mu.Unlock()

	log.Printf("[session] started user=%s mode=%s", userID, mode)
	return s.publish(userID, agg), nil
}

// Ingest feeds one location fix into the user's session. Returns
// whether the sample survived the quality filter.
func (s *SessionService) Ingest(userID string, sample models.GeoSample) (walk.Snapshot, bool, error) {
	agg, err := s.lookup(userID)
	if err != nil {
		return walk.Snapshot{}, false, err
	}

	accepted, err := agg.Ingest(sample)
	if err != nil {
		return walk.Snapshot{}, false, err
	}
	if accepted {
		return s.publish(userID, agg), true, nil
	}
	return agg.Snapshot(), false, nil
}

// RecordSteps applies a cumulative step-counter reading.
func (s *SessionService) RecordSteps(userID string, counter int64) (walk.Snapshot, error) {
	agg, err := s.lookup(userID)
	if err != nil {
		return walk.Snapshot{}, err
	}
	if err := agg.RecordStepCount(int(counter)); err != nil {
		return walk.Snapshot{}, err
	}
	return s.publish(userID, agg), nil
}

// Pause suspends the user's session.
func (s *SessionService) Pause(userID string) (walk.Snapshot, error) {
	agg, err := s.lookup(userID)
	if err != nil {
		return walk.Snapshot{}, err
	}
	if err := agg.Pause(); err != nil {
		return walk.Snapshot{}, err
	}
	return s.publish(userID, agg), nil
}

// Resume continues a paused session.
func (s *SessionService) Resume(userID string) (walk.Snapshot, error) {
	agg, err := s.lookup(userID)
	if err != nil {
		return walk.Snapshot{}, err
	}
	if err := agg.Resume(); err != nil {
		return walk.Snapshot{}, err
	}
	return s.publish(userID, agg), nil
}

// Snapshot returns the current session state. With no session in
// flight it reports an idle snapshot rather than an error.
func (s *SessionService) Snapshot(userID string) walk.Snapshot {
	s.mu.Lock()
	agg, ok := s.sessions[userID]
	s.mu.Unlock()

	if !ok {
		return walk.Snapshot{State: walk.StateIdle}
	}
	return agg.Snapshot()
}

// Stop finalizes the user's session, persists it as a walk and removes
// it from the live map. The stored walk (with its assigned id) is
// returned. If persistence fails the finalized session stays cached
// and a later Stop retries the write, so the recorded walk is never
// lost to a transient failure.
func (s *SessionService) Stop(userID string) (*models.WalkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.sessions[userID]
	if !ok {
		return nil, fmt.Errorf("no session in progress: %w", walk.ErrInvalidState)
	}

	final := s.finalized[userID]
	if final == nil {
		session, err := agg.Stop()
		if err != nil {
			return nil, err
		}
		session.UserID = userID
		final = &session
		s.finalized[userID] = final
	}

	id, err := s.walkStore.Create(*final)
	if err != nil {
		return nil, fmt.Errorf("failed to persist stopped session: %w", err)
	}
	final.ID = id
	delete(s.sessions, userID)
	delete(s.finalized, userID)

	log.Printf("[session] stopped user=%s walk=%s distance=%.1fm steps=%d",
		userID, id, final.DistanceMeters, final.Steps)
	s.broadcast(userID, agg.Snapshot())
	return final, nil
}

func (s *SessionService) lookup(userID string) (*walk.Aggregator, error) {
	s.mu.Lock()
	agg, ok := s.sessions[userID]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no session in progress: %w", walk.ErrInvalidState)
	}
	return agg, nil
}

// publish snapshots the aggregator and pushes the snapshot to any live
// subscribers before returning it.
func (s *SessionService) publish(userID string, agg *walk.Aggregator) walk.Snapshot {
	snap := agg.Snapshot()
	s.broadcast(userID, snap)
	return snap
}

func (s *SessionService) broadcast(userID string, snap walk.Snapshot) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[session] snapshot marshal failed: %v", err)
		return
	}
	s.hub.Broadcast(userID, payload)
}
