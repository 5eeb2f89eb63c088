package progression

import (
	"sort"
	"time"

	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/models"
)

// ApplyCompletion folds one completed session into the stats record and
// returns the updated copy. Pass nil stats for a user's first-ever session.
//
// Streak arithmetic runs on calendar days: a repeat session on the same day
// leaves the streak alone, the next day extends it, and any larger gap
// (or a clock running backwards) restarts it at one.
func ApplyCompletion(s *models.Stats, technique string, sessionDate time.Time) *models.Stats {
	var next *models.Stats
	if s == nil {
		next = &models.Stats{}
	} else {
		next = s.Clone()
	}

	switch {
	case next.LastSessionDate == nil:
		next.CurrentStreak = 1
	default:
		switch diff := clock.DaysBetween(*next.LastSessionDate, sessionDate); {
		case diff == 0:
			// same-day repeat, streak unchanged
		case diff == 1:
			next.CurrentStreak++
		default:
			next.CurrentStreak = 1
		}
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	next.TotalSessions++
	if next.TechniqueCounts == nil {
		next.TechniqueCounts = make(map[string]int)
	}
	if _, seen := next.TechniqueCounts[technique]; !seen {
		next.TechniqueOrder = append(next.TechniqueOrder, technique)
	}
	next.TechniqueCounts[technique]++
	next.FavoriteTechniques = rankTechniques(next.TechniqueCounts, next.TechniqueOrder)

	d := sessionDate
	next.LastSessionDate = &d
	return next
}

// rankTechniques orders techniques by descending count. Ties keep
// first-seen order, which is why the stable sort runs over the first-seen
// list rather than map iteration order.
func rankTechniques(counts map[string]int, firstSeen []string) []string {
	ranked := append([]string(nil), firstSeen...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}
