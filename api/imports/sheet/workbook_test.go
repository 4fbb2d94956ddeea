package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCSV(t *testing.T) {
	data := []byte("Inv No,Customer Name,Qty\nABC123,Acme Traders,10\n")
	grid, err := Open(data)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "Inv No", grid.Cell(0, 0))
	assert.Equal(t, "Acme Traders", grid.Cell(1, 1))
}

func TestOpenCSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\nd\ne,f\n")
	grid, err := Open(data)
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Equal(t, "", grid.Cell(1, 2))
	assert.Equal(t, "f", grid.Cell(2, 1))
}

func TestOpenEmptyFile(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
