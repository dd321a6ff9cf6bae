package domain

import "time"

// Tier is a coarse urgency bucket used only for display.
type Tier string

const (
	TierCritical Tier = "critical"
	TierWarning  Tier = "warning"
	TierNormal   Tier = "normal"
)

const (
	criticalDays = 7
	warningDays  = 30
)

// Classification is the outcome of comparing an expiry date with "now".
type Classification struct {
	DaysRemaining int
	Tier          Tier
	DueForExpiry  bool
}

// DaysRemaining counts whole calendar days from now to expiry in loc. It is
// negative once the expiry date has passed.
func DaysRemaining(expiry, now time.Time, loc *time.Location) int {
	today := CivilDate(now, loc)
	end := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(today).Hours() / 24)
}

// ClassifyDays maps a day count onto a tier; first match wins.
func ClassifyDays(days int) Tier {
	switch {
	case days <= criticalDays:
		return TierCritical
	case days <= warningDays:
		return TierWarning
	default:
		return TierNormal
	}
}

// Classify derives the tier and expiry eligibility for a record.
func Classify(expiry, now time.Time, loc *time.Location, status string) Classification {
	days := DaysRemaining(expiry, now, loc)
	return Classification{
		DaysRemaining: days,
		Tier:          ClassifyDays(days),
		DueForExpiry:  days < 0 && !IsTerminalStatus(status),
	}
}
