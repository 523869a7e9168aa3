package models

// StepStatistics is the aggregate view over one date range, as served
// by GET /api/steps/statistics.
type StepStatistics struct {
	Period             string  `json:"period"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	TotalSteps         int     `json:"totalSteps"`
	TotalDistance      float64 `json:"totalDistance"`
	TotalCalories      int     `json:"totalCalories"`
	TotalActiveMinutes int     `json:"totalActiveMinutes"`
	AverageSteps       int     `json:"averageSteps"`
	CurrentStreak      int     `json:"currentStreak"`
	LongestStreak      int     `json:"longestStreak"`
	DaysWithData       int     `json:"daysWithData"`
	GoalProgress       float64 `json:"goalProgress"`
}

// TrendDay is one entry of the dense day-by-day trend series. Days
// without a stored record are synthesized with zero values.
type TrendDay struct {
	Date      string  `json:"date"`
	Steps     int     `json:"steps"`
	DistanceM float64 `json:"distanceMeters"`
	Calories  int     `json:"calories"`
}

// MovingAverage is one trailing-window average point. Entries exist
// only once a full window is available.
type MovingAverage struct {
	Date         string `json:"date"`
	AverageSteps int    `json:"averageSteps"`
}

// StepTrends is the payload of GET /api/steps/trends.
type StepTrends struct {
	DailyData      []TrendDay      `json:"dailyData"`
	MovingAverages []MovingAverage `json:"movingAverages"`
	Period         string          `json:"period"`
}
