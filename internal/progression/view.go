package progression

import (
	"time"

	"github.com/jstrand/bt/internal/models"
)

// ProjectDays returns the program's day content with the derived Locked and
// Completed flags attached. The UI layer only ever sees this projection;
// the flags are recomputed on every read and never written back.
func ProjectDays(p *models.Program, now time.Time) []models.Day {
	if p == nil {
		return nil
	}
	days := make([]models.Day, len(p.Days))
	for i, d := range p.Days {
		d.Locked = IsLocked(p, d.Number, now)
		d.Completed = p.DayDone(d.Number)
		days[i] = d
	}
	return days
}
