package changes

import (
	"time"

	"ms-boleteria/internal/models"
)

const dateLayout = "2006-01-02"

// DetectFieldChange classifies the difference between two event snapshots.
// Precedence is fixed: a venue change wins over any date/time difference,
// then combined date+time, then date only, then time only.
func DetectFieldChange(original, proposed models.EventSnapshot) models.ChangeKind {
	if original.VenueID != proposed.VenueID {
		return models.ChangeLocation
	}

	dateChanged := !sameCalendarDate(original.Date, proposed.Date)
	timeChanged := original.Time != proposed.Time

	switch {
	case dateChanged && timeChanged:
		return models.ChangeDateTime
	case dateChanged:
		return models.ChangeDate
	case timeChanged:
		return models.ChangeTime
	default:
		return models.ChangeNone
	}
}

// DetectStatusChange is independent of field changes; both detectors may fire
// from the same edit and produce two notification cycles.
func DetectStatusChange(original, proposed models.EventSnapshot) models.ChangeKind {
	switch {
	case !original.IsActive && proposed.IsActive:
		return models.ChangeActivation
	case original.IsActive && !proposed.IsActive:
		return models.ChangeCancellation
	default:
		return models.ChangeNone
	}
}

// sameCalendarDate compares by calendar value, so a reformatted but equal
// date is not a change. Unparseable values fall back to string comparison.
func sameCalendarDate(a, b string) bool {
	ta, errA := parseDate(a)
	tb, errB := parseDate(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ta.Year() == tb.Year() && ta.YearDay() == tb.YearDay()
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
