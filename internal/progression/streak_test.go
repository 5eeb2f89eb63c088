package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstrand/bt/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestApplyCompletion_FirstSession(t *testing.T) {
	s := ApplyCompletion(nil, "box", date(2024, 5, 1))

	assert.Equal(t, 1, s.TotalSessions)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	require.NotNil(t, s.LastSessionDate)
	assert.Equal(t, date(2024, 5, 1), *s.LastSessionDate)
	assert.Equal(t, map[string]int{"box": 1}, s.TechniqueCounts)
	assert.Equal(t, []string{"box"}, s.FavoriteTechniques)
}

func TestApplyCompletion_StreakContinuity(t *testing.T) {
	s := ApplyCompletion(nil, "box", date(2024, 5, 1))

	// Next calendar day extends the streak.
	s = ApplyCompletion(s, "box", date(2024, 5, 2))
	assert.Equal(t, 2, s.CurrentStreak)

	// Same-day repeat does not inflate it.
	s = ApplyCompletion(s, "coherent", date(2024, 5, 2).Add(6*time.Hour))
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 3, s.TotalSessions)

	// A three-day gap restarts at one; the longest streak survives.
	s = ApplyCompletion(s, "box", date(2024, 5, 5))
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
}

func TestApplyCompletion_ClockSkewRestartsStreak(t *testing.T) {
	s := ApplyCompletion(nil, "box", date(2024, 5, 10))
	s = ApplyCompletion(s, "box", date(2024, 5, 11))
	require.Equal(t, 2, s.CurrentStreak)

	// Session dated before the last one (device clock moved backwards).
	s = ApplyCompletion(s, "box", date(2024, 5, 8))
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
}

func TestApplyCompletion_LongestStreakTracksPeak(t *testing.T) {
	var s *models.Stats
	for d := 1; d <= 5; d++ {
		s = ApplyCompletion(s, "box", date(2024, 6, d))
	}
	assert.Equal(t, 5, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)

	s = ApplyCompletion(s, "box", date(2024, 6, 20))
	s = ApplyCompletion(s, "box", date(2024, 6, 21))
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)
}

func TestApplyCompletion_FavoriteRanking(t *testing.T) {
	var s *models.Stats
	s = ApplyCompletion(s, "box", date(2024, 5, 1))
	s = ApplyCompletion(s, "coherent", date(2024, 5, 1))
	s = ApplyCompletion(s, "coherent", date(2024, 5, 2))
	s = ApplyCompletion(s, "alternate", date(2024, 5, 2))

	// coherent=2, box=1, alternate=1; box was seen before alternate.
	assert.Equal(t, []string{"coherent", "box", "alternate"}, s.FavoriteTechniques)
}

// Tie order follows first-seen, not the transient count ordering a tie
// passed through along the way.
func TestApplyCompletion_FavoriteTieKeepsFirstSeenOrder(t *testing.T) {
	var s *models.Stats
	s = ApplyCompletion(s, "box", date(2024, 5, 1))      // box=1
	s = ApplyCompletion(s, "box", date(2024, 5, 1))      // box=1 (counted again)
	s = ApplyCompletion(s, "coherent", date(2024, 5, 2)) // coherent=1
	s = ApplyCompletion(s, "coherent", date(2024, 5, 2))
	s = ApplyCompletion(s, "coherent", date(2024, 5, 3)) // coherent=3, box=2
	s = ApplyCompletion(s, "box", date(2024, 5, 3))      // tie at 3

	assert.Equal(t, 3, s.TechniqueCounts["box"])
	assert.Equal(t, 3, s.TechniqueCounts["coherent"])
	assert.Equal(t, []string{"box", "coherent"}, s.FavoriteTechniques)
}

func TestApplyCompletion_DoesNotMutateInput(t *testing.T) {
	orig := ApplyCompletion(nil, "box", date(2024, 5, 1))
	_ = ApplyCompletion(orig, "coherent", date(2024, 5, 2))

	assert.Equal(t, 1, orig.TotalSessions)
	assert.Equal(t, map[string]int{"box": 1}, orig.TechniqueCounts)
	assert.Equal(t, []string{"box"}, orig.FavoriteTechniques)
}
