package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateDayFirst(t *testing.T) {
	// 05/01/2024 is 5 January, not 1 May.
	got, err := ParseDate("05/01/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got.UTC())
}

func TestParseDateLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"15/03/2024":  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"15-Mar-24":   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"2 Jan 2024":  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"2024-03-15":  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got.UTC(), raw)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("next Tuesday")
	assert.Error(t, err)
}

func TestParseDateOrSerial(t *testing.T) {
	// 45292 is 2024-01-01; 25569 is the Unix epoch.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ParseDateOrSerial("45292"))
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), ParseDateOrSerial("25569"))

	// Fractional part carries time of day.
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), ParseDateOrSerial("45292.5"))
}

func TestParseDateOrSerialRejectsImplausible(t *testing.T) {
	// Small integers are quantities, not dates.
	assert.True(t, ParseDateOrSerial("50").IsZero())
	assert.True(t, ParseDateOrSerial("500000").IsZero())
	assert.True(t, ParseDateOrSerial("not a date").IsZero())
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "Acme Traders", NormalizeCell("  Acme   Traders  "))
	assert.Equal(t, "Acme Traders", NormalizeCell("Acme Traders"))
	assert.Equal(t, "", NormalizeCell("   "))
}

func TestGridAccessors(t *testing.T) {
	g := Grid{
		{"a", " b "},
		{},
		{"", "  "},
	}
	assert.Equal(t, "a", g.Cell(0, 0))
	assert.Equal(t, "b", g.Cell(0, 1))
	assert.Equal(t, "", g.Cell(0, 5))
	assert.Equal(t, "", g.Cell(9, 0))

	assert.False(t, g.RowEmpty(0))
	assert.True(t, g.RowEmpty(1))
	assert.True(t, g.RowEmpty(2))
	assert.True(t, g.RowEmpty(99))
}
