package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberCurrencyAndSeparators(t *testing.T) {
	cases := map[string]float64{
		"R 1,234.56":  1234.56,
		"ZAR 500":     500,
		"1 234.50":    1234.50,
		"-42.5":       -42.5,
		"(R 500.00)":  -500,
		"$99.99":      99.99,
		"0":           0,
	}
	for raw, want := range cases {
		got, err := ParseNumber(raw)
		require.NoError(t, err, raw)
		require.NotNil(t, got, raw)
		assert.InDelta(t, want, *got, 1e-9, raw)
	}
}

func TestParseNumberNoValue(t *testing.T) {
	for _, raw := range []string{"", "   ", "NaN", "nan"} {
		got, err := ParseNumber(raw)
		assert.NoError(t, err, raw)
		assert.Nil(t, got, raw)
	}
}

func TestParseNumberGarbage(t *testing.T) {
	for _, raw := range []string{"n/a", "see note", "--", "12.3.4"} {
		got, err := ParseNumber(raw)
		assert.Error(t, err, raw)
		assert.Nil(t, got, raw)
	}
}

func TestParseDateFieldLayoutsAndSerials(t *testing.T) {
	got, err := ParseDateField("15/03/2024")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got.UTC())

	// Excel serial for 2024-01-01.
	got, err = ParseDateField("45292")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.UTC())
}

func TestParseDateFieldNoValueAndGarbage(t *testing.T) {
	got, err := ParseDateField("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDateField("next Tuesday")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestInvalidFieldCode(t *testing.T) {
	assert.Equal(t, "INVALID_SALES_AMOUNT", InvalidFieldCode("SalesAmount"))
	assert.Equal(t, "INVALID_QTY_ON_HAND", InvalidFieldCode("QtyOnHand"))
	assert.Equal(t, "INVALID_QTY_ON_PO", InvalidFieldCode("QtyOnPO"))
	assert.Equal(t, "INVALID_AMOUNT", InvalidFieldCode("Amount"))
}
