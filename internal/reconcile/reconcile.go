// Package reconcile merges device-reported daily step batches into the
// canonical per-day record set. Each date is an independent idempotent
// operation: replaying a batch after a transient failure converges to
// the same final state.
package reconcile

import (
	"time"

	"github.com/steptracker/steptracker-backend-go/internal/models"
)

// Merge resolves one incoming day against the stored record for the
// same date (nil when none exists) and returns the record to persist
// plus the action taken.
//
// Steps are authoritative from the device and always overwritten.
// Distance, calories and active minutes are overwritten only when the
// device reported a value; nil retains what is stored. On create,
// unreported optional fields default to zero.
func Merge(in models.StepDataInput, existing *models.StepData) (models.StepData, string) {
	if existing == nil {
		out := models.StepData{Date: in.Date, Steps: in.Steps}
		if in.DistanceM != nil {
			out.DistanceM = *in.DistanceM
		}
		if in.Calories != nil {
			out.Calories = *in.Calories
		}
		if in.ActiveMinutes != nil {
			out.ActiveMinutes = *in.ActiveMinutes
		}
		return out, models.SyncActionCreated
	}

	out := *existing
	out.Steps = in.Steps
	if in.DistanceM != nil {
		out.DistanceM = *in.DistanceM
	}
	if in.Calories != nil {
		out.Calories = *in.Calories
	}
	if in.ActiveMinutes != nil {
		out.ActiveMinutes = *in.ActiveMinutes
	}
	return out, models.SyncActionUpdated
}

// Reconcile applies a whole batch against an existing lookup-by-date
// set. It returns the records to persist in batch order and the
// per-entry action report. A date repeated inside one batch is merged
// onto the outcome of its earlier occurrence, so replays and
// duplicates stay convergent. Inputs with malformed dates or negative
// steps fail the whole batch before anything is reported.
func Reconcile(batch []models.StepDataInput, existing map[string]models.StepData) ([]models.StepData, []models.SyncResult, error) {
	if err := Validate(batch); err != nil {
		return nil, nil, err
	}

	state := make(map[string]models.StepData, len(existing))
	for k, v := range existing {
		state[k] = v
	}

	records := make([]models.StepData, 0, len(batch))
	results := make([]models.SyncResult, 0, len(batch))
	for _, in := range batch {
		var prev *models.StepData
		if cur, ok := state[in.Date]; ok {
			prev = &cur
		}
		merged, action := Merge(in, prev)
		state[in.Date] = merged
		records = append(records, merged)
		results = append(results, models.SyncResult{Date: in.Date, Action: action})
	}
	return records, results, nil
}

// Validate checks batch entries for malformed dates and out-of-range
// values before any write happens.
func Validate(batch []models.StepDataInput) error {
	for _, in := range batch {
		if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
			return models.Validationf("invalid date %q", in.Date)
		}
		if in.Steps < 0 {
			return models.Validationf("negative step count for %s", in.Date)
		}
		if in.DistanceM != nil && *in.DistanceM < 0 {
			return models.Validationf("negative distance for %s", in.Date)
		}
		if in.Calories != nil && *in.Calories < 0 {
			return models.Validationf("negative calories for %s", in.Date)
		}
		if in.ActiveMinutes != nil && *in.ActiveMinutes < 0 {
			return models.Validationf("negative active minutes for %s", in.Date)
		}
	}
	return nil
}
