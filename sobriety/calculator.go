package sobriety

import (
	"fmt"
	"time"
)

// InvalidInputError reports a rejected calculator input, carrying the field
// so form-level callers can flag it.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Breakdown is the calendar decomposition of elapsed sober time, anchored
// at the clean date so leap years and month lengths are respected.
type Breakdown struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// Achieved is a milestone whose threshold has been reached.
type Achieved struct {
	Milestone    Milestone `json:"milestone"`
	DateAchieved time.Time `json:"date_achieved"`
}

// Next is the smallest milestone not yet reached.
type Next struct {
	Milestone     Milestone `json:"milestone"`
	DaysRemaining int       `json:"days_remaining"`
	TargetDate    time.Time `json:"target_date"`
}

// Result is a full milestone report. It is derived state: recomputed on
// every request, never persisted.
type Result struct {
	TotalDays int        `json:"total_days"`
	Breakdown Breakdown  `json:"breakdown"`
	Achieved  []Achieved `json:"achieved,omitempty"`
	// Next is nil once every catalog milestone is achieved.
	Next *Next `json:"next,omitempty"`
}

// dateOnly strips the time component, normalizing to midnight UTC.
// Durations are computed between calendar dates, never between wall-clock
// instants, so DST transitions can't produce off-by-one day counts.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysSober returns the whole calendar days elapsed between cleanDate and
// now. A clean date of today yields 0. A clean date after now fails with
// an InvalidInputError; this is the single enforcement point for the
// future-date precondition across all call paths.
func DaysSober(cleanDate, now time.Time) (int, error) {
	start := dateOnly(cleanDate)
	end := dateOnly(now)
	if start.After(end) {
		return 0, &InvalidInputError{Field: "clean_date", Message: "clean date cannot be in the future"}
	}
	return int(end.Sub(start).Hours() / 24), nil
}

// Decompose breaks the elapsed time into calendar years, months and days.
// Whole years are subtracted first, then whole months, from the original
// start date, so re-adding the three parts in that order lands exactly on
// now's calendar date.
func Decompose(cleanDate, now time.Time) (Breakdown, error) {
	start := dateOnly(cleanDate)
	end := dateOnly(now)
	if start.After(end) {
		return Breakdown{}, &InvalidInputError{Field: "clean_date", Message: "clean date cannot be in the future"}
	}

	years := 0
	for !start.AddDate(years+1, 0, 0).After(end) {
		years++
	}
	anchor := start.AddDate(years, 0, 0)

	months := 0
	for !anchor.AddDate(0, months+1, 0).After(end) {
		months++
	}
	anchor = anchor.AddDate(0, months, 0)

	days := int(end.Sub(anchor).Hours() / 24)
	return Breakdown{Years: years, Months: months, Days: days}, nil
}

// Calculate produces the milestone report for this catalog. A milestone
// whose threshold equals the elapsed day count is achieved, not next.
func (c Catalog) Calculate(cleanDate, now time.Time) (Result, error) {
	total, err := DaysSober(cleanDate, now)
	if err != nil {
		return Result{}, err
	}

	// DaysSober already enforced the precondition.
	breakdown, _ := Decompose(cleanDate, now)

	start := dateOnly(cleanDate)
	result := Result{TotalDays: total, Breakdown: breakdown}
	for _, m := range c {
		if m.Days <= total {
			result.Achieved = append(result.Achieved, Achieved{
				Milestone:    m,
				DateAchieved: start.AddDate(0, 0, m.Days),
			})
			continue
		}
		result.Next = &Next{
			Milestone:     m,
			DaysRemaining: m.Days - total,
			TargetDate:    start.AddDate(0, 0, m.Days),
		}
		break
	}
	return result, nil
}

// CalculateMilestones is Calculate over the default catalog.
func CalculateMilestones(cleanDate, now time.Time) (Result, error) {
	return DefaultCatalog().Calculate(cleanDate, now)
}
