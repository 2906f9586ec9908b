package sheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"lote", []string{"Peso", "LOTE"}, "LOTE"},
		{"first match in header order", []string{"Nº Subasta", "Referencia"}, "Nº Subasta"},
		{"id substring", []string{"Gema", "Stone ID"}, "Stone ID"},
		{"ref substring", []string{"Gema", "Ref."}, "Ref."},
		{"fallback to first", []string{"Gema", "Peso"}, "Gema"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifierColumn(tt.headers))
		})
	}
}

func TestFindByReference(t *testing.T) {
	ds := Parse("LOTE,Peso\n2976,3.2\n")

	rec, err := FindByReference(ds, " 2976 ")
	require.NoError(t, err)
	assert.Equal(t, "3.2", rec.Get("Peso"))

	_, err = FindByReference(ds, "9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "9999", nf.Reference)
	assert.Contains(t, err.Error(), "9999")
}

func TestFindByReferenceCaseInsensitive(t *testing.T) {
	ds := Parse("Referencia,Gema\n  ab-12 ,Esmeralda\nAB-13,Rubí\n")

	rec, err := FindByReference(ds, "AB-12")
	require.NoError(t, err)
	assert.Equal(t, "Esmeralda", rec.Get("Gema"))
}

func TestFindByReferenceExactOnly(t *testing.T) {
	ds := Parse("Ref,Gema\n29761,Zafiro\n")

	_, err := FindByReference(ds, "2976")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByReferenceFirstColumnFallback(t *testing.T) {
	ds := Parse("Codigo,Gema\nX9,Zafiro\nY1,Rubí\n")
	require.Equal(t, "Codigo", ds.IDColumn)

	rec, err := FindByReference(ds, "y1")
	require.NoError(t, err)
	assert.Equal(t, "Rubí", rec.Get("Gema"))

	// The other column is never consulted.
	_, err = FindByReference(ds, "Zafiro")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByReferenceFirstMatchWins(t *testing.T) {
	ds := Parse("Ref,Gema\nA1,Zafiro\na1,Rubí\n")

	rec, err := FindByReference(ds, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Zafiro", rec.Get("Gema"))
}

func TestFindByReferenceEmptyDataset(t *testing.T) {
	_, err := FindByReference(Parse(""), "2976")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FindByReference(nil, "2976")
	assert.ErrorIs(t, err, ErrNotFound)
}
