package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHourStarted(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		hour int
		want bool
	}{
		{"earlier hour today", today, 8, true},
		{"current hour today", today, 12, true},
		{"next hour today", today, 13, false},
		{"tomorrow morning", today.AddDate(0, 0, 1), 0, false},
		{"yesterday evening", today.AddDate(0, 0, -1), 23, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HourStarted(tt.date, tt.hour, now))
		})
	}
}
