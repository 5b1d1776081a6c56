// Package phase models the coarse construction lifecycle of a permit.
package phase

import (
	"strings"
	"time"

	"github.com/sells-group/permit-cli/internal/model"
)

// Determine returns the construction phase for a permit from its status
// text and issuance date, measured at now.
func Determine(status string, issued *time.Time, now time.Time) model.Phase {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "completed"), strings.Contains(s, "closed"):
		return model.PhaseLandscaping
	case strings.Contains(s, "application"), strings.Contains(s, "not started"):
		return model.PhaseEarlyConstruction
	case issued == nil:
		return model.PhaseEarlyConstruction
	}

	months := MonthsBetween(*issued, now)
	switch {
	case months <= 3:
		return model.PhaseEarlyConstruction
	case months <= 9:
		return model.PhaseStructural
	case months <= 18:
		return model.PhaseFinishing
	default:
		return model.PhaseLandscaping
	}
}

// ForPermit is Determine applied to a permit.
func ForPermit(p *model.Permit, now time.Time) model.Phase {
	return Determine(p.Status, p.IssuedDate, now)
}

// MonthsBetween returns the whole calendar months elapsed from start to
// end. A partial month does not count; end before start yields a negative
// or zero count.
func MonthsBetween(start, end time.Time) int {
	start, end = start.UTC(), end.UTC()
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

// DaysBetween returns the whole days elapsed from start to end.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
