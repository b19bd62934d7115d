package pickup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grosave/internal/models"
)

func TestNormalizeSlot(t *testing.T) {
	cases := []struct {
		input string
		want  models.SlotID
	}{
		{"Morning (8 AM - 12 PM)", models.SlotMorning},
		{"morning", models.SlotMorning},
		{"  MORNING  ", models.SlotMorning},
		{"Afternoon (12 PM - 4 PM)", models.SlotAfternoon},
		{"afternoon", models.SlotAfternoon},
		{"Evening (4 PM - 7 PM)", models.SlotEvening},
		{"evening", models.SlotEvening},
	}

	for _, tc := range cases {
		got, err := NormalizeSlot(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestNormalizeSlotRejectsUnknownInput(t *testing.T) {
	for _, input := range []string{"", "midnight", "Noon (11 AM - 1 PM)", "slot-1"} {
		_, err := NormalizeSlot(input)
		assert.ErrorIs(t, err, ErrUnknownSlot, "input %q", input)
	}
}

func TestSlotLabels(t *testing.T) {
	assert.Equal(t, "Morning (8 AM - 12 PM)", models.SlotLabel(models.SlotMorning))
	assert.Equal(t, "Afternoon (12 PM - 4 PM)", models.SlotLabel(models.SlotAfternoon))
	assert.Equal(t, "Evening (4 PM - 7 PM)", models.SlotLabel(models.SlotEvening))
}
