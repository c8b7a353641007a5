package timerange

import (
	"testing"
	"time"

	"goldwatch/core/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tr, err := New(start, end)
	require.NoError(t, err)
	assert.Equal(t, start, tr.Start)
	assert.Equal(t, end, tr.End)

	// A point range is valid.
	_, err = New(start, start)
	require.NoError(t, err)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := New(start, start.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestNewRejectsZeroTimes(t *testing.T) {
	_, err := New(time.Time{}, time.Now())
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestLastDays(t *testing.T) {
	tr, err := LastDays(7)
	require.NoError(t, err)
	assert.True(t, tr.End.After(tr.Start))
	assert.WithinDuration(t, time.Now(), tr.End, time.Minute)

	_, err = LastDays(0)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = LastDays(-3)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestContains(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	tr, err := New(start, end)
	require.NoError(t, err)

	// The window is closed on both ends.
	assert.True(t, tr.Contains(start))
	assert.True(t, tr.Contains(end))
	assert.True(t, tr.Contains(start.Add(time.Hour)))
	assert.False(t, tr.Contains(start.Add(-time.Second)))
	assert.False(t, tr.Contains(end.Add(time.Second)))
}
