package service

import (
	"fmt"
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/reconcile"
	"github.com/steptracker/steptracker-backend-go/internal/repository"
	"github.com/steptracker/steptracker-backend-go/internal/stats"
)

// StepService handles business logic for daily step records
type StepService struct {
	stepRepo *repository.StepRepository
	engine   stats.Engine
	now      func() time.Time
}

// NewStepService creates a new step service
func NewStepService(stepRepo *repository.StepRepository, engine stats.Engine) *StepService {
	return &StepService{
		stepRepo: stepRepo,
		engine:   engine,
		now:      time.Now,
	}
}

// GetDaily returns one day's record, zero-filled when absent. An
// empty date defaults to today.
func (s *StepService) GetDaily(userID, date string) (models.StepData, error) {
	if date == "" {
		date = s.now().Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.StepData{}, models.Validationf("invalid date %q", date)
	}

	record, err := s.stepRepo.GetByDate(userID, date)
	if err != nil {
		return models.StepData{}, fmt.Errorf("failed to get daily steps: %w", err)
	}
	if record == nil {
		return models.StepData{Date: date}, nil
	}
	return *record, nil
}

// GetRange returns the existing records within [startDate, endDate],
// ordered by date. An empty range is a valid empty result.
func (s *StepService) GetRange(userID, startDate, endDate string) ([]models.StepData, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	records, err := s.stepRepo.GetRange(userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get step range: %w", err)
	}
	return records, nil
}

// Sync reconciles a device-reported batch into storage and reports
// the per-date action taken. The write happens in one transaction, so
// a failed sync leaves no partial state and the whole batch is safe
// to retry.
func (s *StepService) Sync(userID string, batch []models.StepDataInput) ([]models.SyncResult, error) {
	if len(batch) == 0 {
		return []models.SyncResult{}, nil
	}

	dates := make([]string, 0, len(batch))
	for _, in := range batch {
		dates = append(dates, in.Date)
	}

	if err := reconcile.Validate(batch); err != nil {
		return nil, err
	}

	existing, err := s.stepRepo.GetByDates(userID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing step data: %w", err)
	}

	records, results, err := reconcile.Reconcile(batch, existing)
	if err != nil {
		return nil, err
	}

	if err := s.stepRepo.UpsertBatch(userID, records); err != nil {
		return nil, fmt.Errorf("failed to persist sync batch: %w", err)
	}
	return results, nil
}

// Statistics computes aggregates over a week/month/year window. When
// startDate is empty the window ends today; otherwise it starts there.
func (s *StepService) Statistics(userID, period, startDate string) (models.StepStatistics, error) {
	start, end, err := periodWindow(period, startDate, s.now())
	if err != nil {
		return models.StepStatistics{}, err
	}

	records, err := s.stepRepo.GetRange(userID, start, end)
	if err != nil {
		return models.StepStatistics{}, fmt.Errorf("failed to get step range: %w", err)
	}

	stat, err := s.engine.Compute(records, start, end)
	if err != nil {
		return models.StepStatistics{}, err
	}
	stat.Period = period
	return stat, nil
}

// Trends returns the dense daily series and moving averages for the
// last days days ending today.
func (s *StepService) Trends(userID string, days int) (models.StepTrends, error) {
	today := s.now()
	start := today.AddDate(0, 0, -(days - 1))

	records, err := s.stepRepo.GetRange(userID, start.Format(models.DateLayout), today.Format(models.DateLayout))
	if err != nil {
		return models.StepTrends{}, fmt.Errorf("failed to get step range: %w", err)
	}

	return s.engine.Trends(records, days, today)
}

// periodWindow resolves a named period to an inclusive [start, end]
// date pair. With a start date the window runs forward from it; with
// none it runs backward from today.
func periodWindow(period, startDate string, today time.Time) (string, string, error) {
	var years, months, days int
	switch period {
	case "week":
		days = 7
	case "month":
		months = 1
	case "year":
		years = 1
	default:
		return "", "", models.Validationf("period must be week, month or year, got %q", period)
	}

	if startDate != "" {
		start, err := time.Parse(models.DateLayout, startDate)
		if err != nil {
			return "", "", models.Validationf("invalid startDate %q", startDate)
		}
		end := start.AddDate(years, months, days).AddDate(0, 0, -1)
		return startDate, end.Format(models.DateLayout), nil
	}

	end := today
	start := end.AddDate(-years, -months, -days).AddDate(0, 0, 1)
	return start.Format(models.DateLayout), end.Format(models.DateLayout), nil
}

func validateRange(startDate, endDate string) error {
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return models.Validationf("invalid startDate %q", startDate)
	}
	end, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return models.Validationf("invalid endDate %q", endDate)
	}
	if end.Before(start) {
		return models.Validationf("endDate %s before startDate %s", endDate, startDate)
	}
	return nil
}
