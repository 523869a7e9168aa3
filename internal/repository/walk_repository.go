package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/steptracker/steptracker-backend-go/internal/database"
	"github.com/steptracker/steptracker-backend-go/internal/models"
)

// WalkRepository handles database operations for walk sessions
type WalkRepository struct {
	db *sql.DB
}

// NewWalkRepository creates a new walk repository
func NewWalkRepository(db *sql.DB) *WalkRepository {
	return &WalkRepository{db: db}
}

// Create persists a finalized walk session and its route coordinates
// in one transaction, assigning the surrogate id.
func (r *WalkRepository) Create(session models.WalkSession) (string, error) {
	id := uuid.NewString()

	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		var endTime interface{}
		if session.EndTime != nil {
			endTime = session.EndTime.UTC().Format(time.RFC3339Nano)
		}
		var pace interface{}
		if session.AveragePaceMinKm != nil {
			pace = *session.AveragePaceMinKm
		}
		var maxElevation interface{}
		if session.MaxElevationMeters != nil {
			maxElevation = *session.MaxElevationMeters
		}

		_, err := tx.Exec(`
			INSERT INTO walk_sessions (
				id, user_id, name, start_time, end_time, duration_seconds,
				distance_meters, steps, average_pace_min_per_km,
				max_elevation_meters, elevation_gain_meters, walk_mode,
				notes, is_public, is_saved, route_polyline, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, session.UserID, session.Name,
			session.StartTime.UTC().Format(time.RFC3339Nano), endTime,
			session.DurationSeconds, session.DistanceMeters, session.Steps,
			pace, maxElevation, session.ElevationGainM, session.WalkMode,
			session.Notes, boolToInt(session.IsPublic), boolToInt(session.IsSaved),
			session.RoutePolyline, time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to insert walk session: %w", err)
		}

		if len(session.Route) == 0 {
			return nil
		}

		stmt, err := tx.Prepare(`
			INSERT INTO route_coordinates (walk_session_id, latitude, longitude, elevation_meters, timestamp_ms, accuracy_meters)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare coordinate insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range session.Route {
			var elevation, accuracy interface{}
			if c.ElevationMeters != nil {
				elevation = *c.ElevationMeters
			}
			if c.AccuracyMeters != nil {
				accuracy = *c.AccuracyMeters
			}
			if _, err := stmt.Exec(id, c.Latitude, c.Longitude, elevation, c.TimestampMs, accuracy); err != nil {
				return fmt.Errorf("failed to insert route coordinate: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

const walkColumns = `id, user_id, name, start_time, end_time, duration_seconds,
	distance_meters, steps, average_pace_min_per_km, max_elevation_meters,
	elevation_gain_meters, walk_mode, notes, is_public, is_saved,
	route_polyline, created_at`

// List retrieves a page of a user's walks, newest first, optionally
// bounded by start-time filters.
func (r *WalkRepository) List(userID string, page, pageSize int, startDate, endDate string) ([]models.WalkSession, int64, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}

	if startDate != "" {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, endDate)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM walk_sessions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count walk sessions: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	query := "SELECT " + walkColumns + " FROM walk_sessions" + where + " ORDER BY start_time DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query walk sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WalkSession
	for rows.Next() {
		session, err := scanWalk(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, session)
	}

	return sessions, total, rows.Err()
}

// GetByID retrieves one walk with its ordered route coordinates, or
// nil when the id does not exist for this user.
func (r *WalkRepository) GetByID(userID, id string) (*models.WalkSession, error) {
	row := r.db.QueryRow("SELECT "+walkColumns+" FROM walk_sessions WHERE id = ? AND user_id = ?", id, userID)
	session, err := scanWalk(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT latitude, longitude, elevation_meters, timestamp_ms, accuracy_meters
		FROM route_coordinates WHERE walk_session_id = ? ORDER BY timestamp_ms ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query route coordinates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.RouteCoordinate
		var elevation, accuracy sql.NullFloat64
		if err := rows.Scan(&c.Latitude, &c.Longitude, &elevation, &c.TimestampMs, &accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan route coordinate: %w", err)
		}
		if elevation.Valid {
			c.ElevationMeters = &elevation.Float64
		}
		if accuracy.Valid {
			c.AccuracyMeters = &accuracy.Float64
		}
		session.Route = append(session.Route, c)
	}

	return &session, rows.Err()
}

// UpdateMeta updates the mutable metadata of a stored walk (name,
// notes, visibility, saved flag). Derived fields stay immutable after
// stop. Returns false when the walk does not exist for this user.
func (r *WalkRepository) UpdateMeta(userID, id string, name, notes *string, isPublic, isSaved *bool) (bool, error) {
	var sets []string
	var args []interface{}

	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *notes)
	}
	if isPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, boolToInt(*isPublic))
	}
	if isSaved != nil {
		sets = append(sets, "is_saved = ?")
		args = append(args, boolToInt(*isSaved))
	}
	if len(sets) == 0 {
		return r.exists(userID, id)
	}

	args = append(args, id, userID)
	res, err := r.db.Exec("UPDATE walk_sessions SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("failed to update walk session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a walk and its coordinates. Returns false when the
// walk does not exist for this user.
func (r *WalkRepository) Delete(userID, id string) (bool, error) {
	var deleted bool
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM route_coordinates WHERE walk_session_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete route coordinates: %w", err)
		}
		res, err := tx.Exec("DELETE FROM walk_sessions WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete walk session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read delete result: %w", err)
		}
		deleted = affected > 0
		return nil
	})
	return deleted, err
}

// Summary aggregates a user's stored walks.
func (r *WalkRepository) Summary(userID string) (models.WalkSummary, error) {
	var summary models.WalkSummary

	err := r.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(distance_meters), 0),
			COALESCE(SUM(duration_seconds), 0),
			COALESCE(AVG(average_pace_min_per_km), 0)
		FROM walk_sessions WHERE user_id = ?`, userID).Scan(
		&summary.TotalWalks, &summary.TotalDistanceMeters,
		&summary.TotalDurationSeconds, &summary.AveragePaceMinKm,
	)
	if err != nil {
		return models.WalkSummary{}, fmt.Errorf("failed to aggregate walks: %w", err)
	}

	longest, err := r.highlight(userID, "ORDER BY distance_meters DESC", false)
	if err != nil {
		return models.WalkSummary{}, err
	}
	summary.LongestWalk = longest

	fastest, err := r.highlight(userID, "ORDER BY average_pace_min_per_km ASC", true)
	if err != nil {
		return models.WalkSummary{}, err
	}
	summary.FastestWalk = fastest

	return summary, nil
}

func (r *WalkRepository) highlight(userID, order string, requirePace bool) (*models.WalkHighlight, error) {
	query := "SELECT id, name, distance_meters, COALESCE(average_pace_min_per_km, 0), start_time FROM walk_sessions WHERE user_id = ?"
	if requirePace {
		query += " AND average_pace_min_per_km IS NOT NULL"
	}
	query += " " + order + " LIMIT 1"

	var h models.WalkHighlight
	var name sql.NullString
	var startTime string
	err := r.db.QueryRow(query, userID).Scan(&h.ID, &name, &h.DistanceMeters, &h.PaceMinKm, &startTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query walk highlight: %w", err)
	}
	h.Name = name.String
	h.Date = parseStoredTime(startTime)
	return &h, nil
}

func (r *WalkRepository) exists(userID, id string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM walk_sessions WHERE id = ? AND user_id = ?", id, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check walk session: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWalk(row rowScanner) (models.WalkSession, error) {
	var s models.WalkSession
	var name, endTime, notes, polyline sql.NullString
	var pace, maxElevation sql.NullFloat64
	var isPublic, isSaved int
	var startTime, createdAt string

	err := row.Scan(
		&s.ID, &s.UserID, &name, &startTime, &endTime, &s.DurationSeconds,
		&s.DistanceMeters, &s.Steps, &pace, &maxElevation,
		&s.ElevationGainM, &s.WalkMode, &notes, &isPublic, &isSaved,
		&polyline, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.WalkSession{}, err
		}
		return models.WalkSession{}, fmt.Errorf("failed to scan walk session: %w", err)
	}

	s.Name = name.String
	s.Notes = notes.String
	s.RoutePolyline = polyline.String
	s.IsPublic = isPublic != 0
	s.IsSaved = isSaved != 0
	s.StartTime = parseStoredTime(startTime)
	s.CreatedAt = parseStoredTime(createdAt)
	if endTime.Valid && endTime.String != "" {
		t := parseStoredTime(endTime.String)
		s.EndTime = &t
	}
	if pace.Valid {
		s.AveragePaceMinKm = &pace.Float64
	}
	if maxElevation.Valid {
		s.MaxElevationMeters = &maxElevation.Float64
	}
	return s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
