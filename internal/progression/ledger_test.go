package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstrand/bt/internal/models"
	"github.com/jstrand/bt/internal/store"
)

func TestComplete_StandardAdvancesCurrentDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	p := standardProgram(start)

	next, err := Complete(p, models.DayKey(1), now)
	require.NoError(t, err)

	assert.Equal(t, 2, next.CurrentDay)
	assert.True(t, next.HasCompleted(models.DayKey(1)))
	assert.Equal(t, now, next.LastUpdated)

	// Input snapshot untouched.
	assert.Equal(t, 1, p.CurrentDay)
	assert.Empty(t, p.CompletedKeys)
}

func TestComplete_StandardCapsAtTrackLength(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	p := standardProgram(start)
	p.CurrentDay = models.StandardTrackLength
	for d := 1; d < models.StandardTrackLength; d++ {
		p.CompletedKeys = append(p.CompletedKeys, models.DayKey(d))
	}

	next, err := Complete(p, models.DayKey(models.StandardTrackLength), start.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, models.StandardTrackLength, next.CurrentDay)
}

// complete(complete(P,k), k) == complete(P,k)
func TestComplete_Idempotent(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := start.Add(10 * time.Hour)
	p := standardProgram(start)

	once, err := Complete(p, models.DayKey(1), now)
	require.NoError(t, err)

	twice, err := Complete(once, models.DayKey(1), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Same(t, once, twice, "repeat completion returns the snapshot unchanged")
	assert.Equal(t, 2, twice.CurrentDay)
	assert.Len(t, twice.CompletedKeys, 1)
}

func TestComplete_ExtendedDoesNotAdvanceCurrentDay(t *testing.T) {
	start := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	p := extendedProgram(start)

	cur, err := Complete(p, models.SessionKey(1, models.SessionMorning), now)
	require.NoError(t, err)
	cur, err = Complete(cur, models.SessionKey(1, models.SessionEvening), now)
	require.NoError(t, err)

	// Both sessions done, but the day only flips via the rollover check.
	assert.Equal(t, 1, cur.CurrentDay)
	assert.True(t, cur.DayDone(1))
	assert.Equal(t, now, cur.LastUpdated)
}

func TestComplete_Rejections(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := start.Add(time.Hour)

	tests := []struct {
		name string
		prog *models.Program
		key  models.CompletionKey
	}{
		{"day beyond standard track", standardProgram(start), models.DayKey(6)},
		{"day beyond extended track", extendedProgram(start), models.SessionKey(22, models.SessionMorning)},
		{"zero day", standardProgram(start), models.DayKey(0)},
		{"session key on standard track", standardProgram(start), models.SessionKey(2, models.SessionMorning)},
		{"bare day key on extended track", extendedProgram(start), models.DayKey(2)},
		{"garbage key", standardProgram(start), models.CompletionKey("soon")},
		{"unknown session", extendedProgram(start), models.CompletionKey("2-noon")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Complete(tt.prog, tt.key, now)
			assert.ErrorIs(t, err, store.ErrOutOfRange)
			assert.Nil(t, next)
			assert.Empty(t, tt.prog.CompletedKeys, "rejected completion must not mutate")
		})
	}
}

func TestComplete_MalformedProgram(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	_, err := Complete(nil, models.DayKey(1), now)
	assert.ErrorIs(t, err, store.ErrMalformedRecord)

	bad := &models.Program{TrackKind: "premium_v2"}
	_, err = Complete(bad, models.DayKey(1), now)
	assert.ErrorIs(t, err, store.ErrMalformedRecord)
}
