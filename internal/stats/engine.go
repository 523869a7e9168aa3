package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/models"
)

// MovingAverageWindow is the fixed trailing window of the trends
// series. Shorter prefixes produce no entry rather than a partial
// average.
const MovingAverageWindow = 7

// Engine computes historical aggregates over daily step records. The
// caller supplies only the rows that exist; the engine synthesizes
// zero-valued days for calendar gaps where the computation needs a
// dense range.
type Engine struct {
	DailyGoal int
}

// NewEngine creates an engine with the configured daily step goal,
// used for the goalProgress field of statistics responses.
func NewEngine(dailyGoal int) Engine {
	return Engine{DailyGoal: dailyGoal}
}

// Compute aggregates records within [startDate, endDate] inclusive.
// Sums and the average run over present rows only; streaks run over
// the densified calendar, so a missing day counts as a zero-step day
// and breaks a run. An empty range yields zeros, not an error.
func (e Engine) Compute(records []models.StepData, startDate, endDate string) (models.StepStatistics, error) {
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return models.StepStatistics{}, models.Validationf("invalid startDate %q", startDate)
	}
	end, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return models.StepStatistics{}, models.Validationf("invalid endDate %q", endDate)
	}
	if end.Before(start) {
		return models.StepStatistics{}, models.Validationf("endDate %s before startDate %s", endDate, startDate)
	}

	byDate := make(map[string]models.StepData, len(records))
	stat := models.StepStatistics{StartDate: startDate, EndDate: endDate}

	for _, r := range records {
		day, err := time.Parse(models.DateLayout, r.Date)
		if err != nil {
			return models.StepStatistics{}, models.Validationf("invalid record date %q", r.Date)
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		byDate[r.Date] = r

		stat.TotalSteps += r.Steps
		stat.TotalDistance += r.DistanceM
		stat.TotalCalories += r.Calories
		stat.TotalActiveMinutes += r.ActiveMinutes
		stat.DaysWithData++
	}

	if stat.DaysWithData > 0 {
		stat.AverageSteps = int(math.Round(float64(stat.TotalSteps) / float64(stat.DaysWithData)))
	}
	if e.DailyGoal > 0 {
		stat.GoalProgress = math.Round(float64(stat.AverageSteps)/float64(e.DailyGoal)*1000) / 10
	}

	// Streak scan over the dense calendar.
	run := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		r := byDate[day.Format(models.DateLayout)]
		if r.Steps > 0 {
			run++
			if run > stat.LongestStreak {
				stat.LongestStreak = run
			}
		} else {
			run = 0
		}
	}
	stat.CurrentStreak = run

	return stat, nil
}

// Trends produces a dense day-by-day series covering exactly days
// consecutive dates ending at today, plus the trailing 7-day moving
// average series. days must be within [7, 365].
func (e Engine) Trends(records []models.StepData, days int, today time.Time) (models.StepTrends, error) {
	if days < MovingAverageWindow || days > 365 {
		return models.StepTrends{}, models.Validationf("days must be between %d and 365, got %d", MovingAverageWindow, days)
	}

	byDate := make(map[string]models.StepData, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	daily := make([]models.TrendDay, 0, days)
	start := today.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(models.DateLayout)
		entry := models.TrendDay{Date: date}
		if r, ok := byDate[date]; ok {
			entry.Steps = r.Steps
			entry.DistanceM = r.DistanceM
			entry.Calories = r.Calories
		}
		daily = append(daily, entry)
	}

	var averages []models.MovingAverage
	windowSum := 0
	for i, d := range daily {
		windowSum += d.Steps
		if i >= MovingAverageWindow {
			windowSum -= daily[i-MovingAverageWindow].Steps
		}
		if i >= MovingAverageWindow-1 {
			averages = append(averages, models.MovingAverage{
				Date:         d.Date,
				AverageSteps: int(math.Round(float64(windowSum) / MovingAverageWindow)),
			})
		}
	}

	return models.StepTrends{
		DailyData:      daily,
		MovingAverages: averages,
		Period:         formatPeriod(days),
	}, nil
}

func formatPeriod(days int) string {
	return fmt.Sprintf("%d days", days)
}
