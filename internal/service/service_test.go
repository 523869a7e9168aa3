package service

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/steptracker/steptracker-backend-go/internal/database"
	"github.com/steptracker/steptracker-backend-go/internal/repository"
	"github.com/steptracker/steptracker-backend-go/internal/stats"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	// A second pooled connection would see a different in-memory DB.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func newStepService(t *testing.T, today string) *StepService {
	t.Helper()

	svc := NewStepService(repository.NewStepRepository(testDB(t)), stats.NewEngine(10000))
	fixed, err := time.Parse("2006-01-02", today)
	if err != nil {
		t.Fatalf("parse today: %v", err)
	}
	svc.now = func() time.Time { return fixed }
	return svc
}

func fptr(v float64) *float64 { return &v }
