package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstrand/bt/internal/models"
)

func TestProjectDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	p := standardProgram(start)
	p.Days = []models.Day{
		{Number: 1, Title: "Arrive", Technique: "box"},
		{Number: 2, Title: "Deepen", Technique: "coherent"},
		{Number: 3, Title: "Extend", Technique: "alternate"},
	}
	p.CompletedKeys = []models.CompletionKey{models.DayKey(1)}
	p.CurrentDay = 2

	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	days := ProjectDays(p, now)
	require.Len(t, days, 3)

	assert.False(t, days[0].Locked)
	assert.True(t, days[0].Completed)
	assert.False(t, days[1].Locked)
	assert.False(t, days[1].Completed)
	assert.True(t, days[2].Locked)

	// Derived flags never leak back into the stored snapshot.
	for _, d := range p.Days {
		assert.False(t, d.Locked)
		assert.False(t, d.Completed)
	}
}

func TestProjectDays_NilProgram(t *testing.T) {
	assert.Nil(t, ProjectDays(nil, time.Now()))
}
