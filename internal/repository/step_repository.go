package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/database"
	"github.com/steptracker/steptracker-backend-go/internal/models"
)

// StepRepository handles database operations for daily step records
type StepRepository struct {
	db *sql.DB
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *sql.DB) *StepRepository {
	return &StepRepository{db: db}
}

// GetByDate retrieves one day's record, or nil when no row exists.
func (r *StepRepository) GetByDate(userID, date string) (*models.StepData, error) {
	query := `SELECT date, steps, distance_meters, calories, active_minutes, updated_at
		FROM step_data WHERE user_id = ? AND date = ?`

	var d models.StepData
	var updatedAt string
	err := r.db.QueryRow(query, userID, date).Scan(
		&d.Date, &d.Steps, &d.DistanceM, &d.Calories, &d.ActiveMinutes, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step data: %w", err)
	}
	d.UpdatedAt = parseStoredTime(updatedAt)

	return &d, nil
}

// GetRange retrieves all records within [startDate, endDate], ordered
// by date ascending. Gap days simply have no row.
func (r *StepRepository) GetRange(userID, startDate, endDate string) ([]models.StepData, error) {
	query := `SELECT date, steps, distance_meters, calories, active_minutes, updated_at
		FROM step_data
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`

	rows, err := r.db.Query(query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query step range: %w", err)
	}
	defer rows.Close()

	var records []models.StepData
	for rows.Next() {
		var d models.StepData
		var updatedAt string
		if err := rows.Scan(&d.Date, &d.Steps, &d.DistanceM, &d.Calories, &d.ActiveMinutes, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step data: %w", err)
		}
		d.UpdatedAt = parseStoredTime(updatedAt)
		records = append(records, d)
	}

	return records, rows.Err()
}

// GetByDates retrieves the existing records for the given dates as a
// lookup-by-date map, feeding the sync reconciler.
func (r *StepRepository) GetByDates(userID string, dates []string) (map[string]models.StepData, error) {
	existing := make(map[string]models.StepData, len(dates))
	for _, date := range dates {
		record, err := r.GetByDate(userID, date)
		if err != nil {
			return nil, err
		}
		if record != nil {
			existing[date] = *record
		}
	}
	return existing, nil
}

// UpsertBatch writes fully reconciled records in one transaction.
// Each row carries final field values, so replaying the same batch is
// a no-op on state.
func (r *StepRepository) UpsertBatch(userID string, records []models.StepData) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO step_data (user_id, date, steps, distance_meters, calories, active_minutes, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, date) DO UPDATE SET
				steps = excluded.steps,
				distance_meters = excluded.distance_meters,
				calories = excluded.calories,
				active_minutes = excluded.active_minutes,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, d := range records {
			if _, err := stmt.Exec(userID, d.Date, d.Steps, d.DistanceM, d.Calories, d.ActiveMinutes, now); err != nil {
				return fmt.Errorf("failed to upsert step data for %s: %w", d.Date, err)
			}
		}
		return nil
	})
}

func parseStoredTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
