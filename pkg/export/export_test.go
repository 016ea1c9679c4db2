package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	payload, err := CSV(Table{
		Columns: []string{"Subject", "Enrolled"},
		Rows:    [][]string{{"Algebra", "6"}, {"Physics", "12"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Subject,Enrolled\nAlgebra,6\nPhysics,12\n", string(payload))
}

func TestCSVShortRowPadded(t *testing.T) {
	payload, err := CSV(Table{
		Columns: []string{"A", "B", "C"},
		Rows:    [][]string{{"only"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "A,B,C\nonly,,\n", string(payload))
}

func TestCSVNoColumns(t *testing.T) {
	_, err := CSV(Table{})
	require.Error(t, err)
}

func TestPDF(t *testing.T) {
	payload, err := PDF(Table{
		Title:   "Subject Occupancy",
		Columns: []string{"Subject", "Enrolled"},
		Rows:    [][]string{{"Algebra", "6"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestPDFNoColumns(t *testing.T) {
	_, err := PDF(Table{})
	require.Error(t, err)
}
