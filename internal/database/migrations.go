package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is one schema change applied exactly once and recorded in
// the migrations table.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// The full schema, in order. New changes append; applied versions are
// never edited.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_step_data",
		SQL: `
			CREATE TABLE IF NOT EXISTS step_data (
				user_id        TEXT NOT NULL,
				date           TEXT NOT NULL,
				steps          INTEGER NOT NULL DEFAULT 0,
				distance_meters REAL NOT NULL DEFAULT 0,
				calories       INTEGER NOT NULL DEFAULT 0,
				active_minutes INTEGER NOT NULL DEFAULT 0,
				updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, date)
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_walk_sessions",
		SQL: `
			CREATE TABLE IF NOT EXISTS walk_sessions (
				id                      TEXT PRIMARY KEY,
				user_id                 TEXT NOT NULL,
				name                    TEXT,
				start_time              TIMESTAMP NOT NULL,
				end_time                TIMESTAMP,
				duration_seconds        INTEGER NOT NULL DEFAULT 0,
				distance_meters         REAL NOT NULL DEFAULT 0,
				steps                   INTEGER NOT NULL DEFAULT 0,
				average_pace_min_per_km REAL,
				max_elevation_meters    REAL,
				elevation_gain_meters   REAL NOT NULL DEFAULT 0,
				walk_mode               TEXT NOT NULL,
				notes                   TEXT,
				is_public               INTEGER NOT NULL DEFAULT 0,
				is_saved                INTEGER NOT NULL DEFAULT 0,
				route_polyline          TEXT,
				created_at              TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 3,
		Name:    "create_route_coordinates",
		SQL: `
			CREATE TABLE IF NOT EXISTS route_coordinates (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				walk_session_id  TEXT NOT NULL REFERENCES walk_sessions(id) ON DELETE CASCADE,
				latitude         REAL NOT NULL,
				longitude        REAL NOT NULL,
				elevation_meters REAL,
				timestamp_ms     INTEGER NOT NULL DEFAULT 0,
				accuracy_meters  REAL
			)
		`,
	},
	{
		Version: 4,
		Name:    "add_indexes",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_walk_sessions_user_start ON walk_sessions(user_id, start_time);
			CREATE INDEX IF NOT EXISTS idx_route_coordinates_session ON route_coordinates(walk_session_id, timestamp_ms);
		`,
	},
}

// RunMigrations applies all pending migrations in version order.
func RunMigrations(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	return Transaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		log.Printf("[database] applied migration %d: %s", m.Version, m.Name)
		return nil
	})
}
