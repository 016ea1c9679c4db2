package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustedQuota(t *testing.T) {
	tests := []struct {
		name      string
		oldMax    int
		available int
		newMax    int
		want      int
	}{
		{name: "increase keeps occupied seats", oldMax: 10, available: 4, newMax: 15, want: 9},
		{name: "decrease keeps occupied seats", oldMax: 10, available: 4, newMax: 8, want: 2},
		{name: "shrink below occupancy clamps to zero", oldMax: 10, available: 3, newMax: 3, want: 0},
		{name: "five occupied seats survive a cut to three", oldMax: 10, available: 5, newMax: 3, want: 0},
		{name: "no enrollments tracks new max", oldMax: 10, available: 10, newMax: 25, want: 25},
		{name: "full subject stays full on same max", oldMax: 10, available: 0, newMax: 10, want: 0},
		{name: "negative occupancy treated as empty", oldMax: 5, available: 8, newMax: 6, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adjustedQuota(tt.oldMax, tt.available, tt.newMax))
		})
	}
}
