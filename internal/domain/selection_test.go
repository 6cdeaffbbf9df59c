package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookedSet map[Slot]bool

func (b bookedSet) IsBooked(court, hour int) bool {
	return b[Slot{Court: court, Hour: hour}]
}

var testDate = time.Date(2026, 10, 20, 15, 30, 0, 0, time.UTC)

func TestSelection_ToggleAddsAndRemoves(t *testing.T) {
	sel := NewSelection(1, testDate, 3)

	require.NoError(t, sel.Toggle(2, 7, bookedSet{}))
	assert.True(t, sel.Contains(2, 7))
	assert.Equal(t, 1, sel.Len())

	require.NoError(t, sel.Toggle(2, 7, bookedSet{}))
	assert.False(t, sel.Contains(2, 7))
	assert.Zero(t, sel.Len())
}

func TestSelection_ToggleParity(t *testing.T) {
	for n := 1; n <= 6; n++ {
		sel := NewSelection(1, testDate, 2)
		for i := 0; i < n; i++ {
			require.NoError(t, sel.Toggle(1, 10, bookedSet{}))
		}
		assert.Equal(t, n%2 == 1, sel.Contains(1, 10), "toggled %d times", n)
	}
}

func TestSelection_BookedSlotRejected(t *testing.T) {
	sel := NewSelection(1, testDate, 2)
	require.NoError(t, sel.Toggle(1, 9, bookedSet{}))

	err := sel.Toggle(1, 10, bookedSet{{Court: 1, Hour: 10}: true})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, []Slot{{Court: 1, Hour: 9}}, sel.Slots())
}

func TestSelection_DeselectAllowedEvenIfBookedMeanwhile(t *testing.T) {
	sel := NewSelection(1, testDate, 2)
	require.NoError(t, sel.Toggle(1, 10, bookedSet{}))

	err := sel.Toggle(1, 10, bookedSet{{Court: 1, Hour: 10}: true})

	require.NoError(t, err)
	assert.False(t, sel.Contains(1, 10))
}

func TestSelection_InvalidCourt(t *testing.T) {
	sel := NewSelection(1, testDate, 2)

	assert.ErrorIs(t, sel.Toggle(0, 10, nil), ErrInvalidSlot)
	assert.ErrorIs(t, sel.Toggle(3, 10, nil), ErrInvalidSlot)
	assert.ErrorIs(t, sel.Toggle(1, -1, nil), ErrInvalidSlot)
	assert.Zero(t, sel.Len())
}

func TestSelection_SlotsSortedAndHours(t *testing.T) {
	sel := NewSelection(1, testDate, 3)
	for _, s := range []Slot{{3, 8}, {1, 12}, {1, 7}, {2, 7}} {
		require.NoError(t, sel.Toggle(s.Court, s.Hour, nil))
	}

	assert.Equal(t, []Slot{{1, 7}, {1, 12}, {2, 7}, {3, 8}}, sel.Slots())
	assert.Equal(t, []int{7, 12, 7, 8}, sel.Hours())
}

func TestSelection_Validate(t *testing.T) {
	sel := NewSelection(1, testDate, 2)
	assert.ErrorIs(t, sel.Validate(), ErrInvalidSelection)

	require.NoError(t, sel.Toggle(1, 1, nil))
	assert.NoError(t, sel.Validate())
}

func TestSelection_DateTruncated(t *testing.T) {
	sel := NewSelection(1, testDate, 2)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), sel.Date)
}

func TestSlotConflictError(t *testing.T) {
	err := error(&SlotConflictError{Slots: []Slot{{Court: 1, Hour: 10}}})

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Contains(t, err.Error(), "court=1 hour=10")
}

func TestBuildSelection(t *testing.T) {
	sel, err := BuildSelection(1, testDate, 2, []Slot{{2, 9}, {1, 7}}, bookedSet{})

	require.NoError(t, err)
	assert.Equal(t, []Slot{{1, 7}, {2, 9}}, sel.Slots())
}

func TestBuildSelection_Errors(t *testing.T) {
	booked := bookedSet{{Court: 1, Hour: 10}: true}

	tests := []struct {
		name  string
		slots []Slot
		want  error
	}{
		{"empty", nil, ErrInvalidSelection},
		{"duplicate", []Slot{{1, 7}, {1, 7}}, ErrInvalidSelection},
		{"booked", []Slot{{1, 9}, {1, 10}}, ErrSlotUnavailable},
		{"unknown court", []Slot{{5, 9}}, ErrInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSelection(1, testDate, 2, tt.slots, booked)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
