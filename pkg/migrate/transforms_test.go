package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

func TestBuiltinTransformsInverse(t *testing.T) {
	all := BuiltinTransforms()
	for _, name := range []string{"integerToText", "listToScalar", "decimalToCents", "listToCsv"} {
		assert.Contains(t, all, name)
	}

	tests := []struct {
		name string
		in   string
	}{
		{"textToInteger", `"42"`},
		{"integerToText", `-7`},
		{"scalarToList", `"a"`},
		{"listToScalar", `[true]`},
		{"centsToDecimal", `1999`},
		{"decimalToCents", `19.90`},
		{"csvToList", `"a,b,c"`},
		{"listToCsv", `["x","y"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := all[tt.name]
			in, err := document.Parse([]byte(tt.in))
			require.NoError(t, err)

			fwd, err := tr.Forward(nil, in)
			require.NoError(t, err)
			back, err := tr.Backward(nil, document.FromValue(fwd))
			require.NoError(t, err)

			got, err := document.Marshal(document.FromValue(back))
			require.NoError(t, err)
			assert.Equal(t, tt.in, string(got))
		})
	}
}

func TestBuiltinTransformsRejectBadShapes(t *testing.T) {
	all := BuiltinTransforms()
	tests := []struct {
		name string
		in   document.Node
	}{
		{"textToInteger", document.Text("forty two")},
		{"textToInteger", document.NewInteger(42)},
		{"listToScalar", document.Array{document.Text("a"), document.Text("b")}},
		{"scalarToList", document.Array{}},
		{"decimalToCents", mustDecimal(t, "19.999")},
		{"listToCsv", document.Array{document.Text("a,b")}},
		{"listToCsv", document.Array{document.NewInteger(1)}},
	}
	for _, tt := range tests {
		_, err := all[tt.name].Forward(nil, tt.in)
		assert.ErrorIs(t, shapeError(err), ErrShape, tt.name)
	}
}

func TestCentsToDecimalScale(t *testing.T) {
	out, err := BuiltinTransforms()["centsToDecimal"].Forward(nil, document.NewInteger(5))
	require.NoError(t, err)
	b, err := document.Marshal(document.FromValue(out))
	require.NoError(t, err)
	assert.Equal(t, "0.05", string(b))
}

func TestCSVEmpty(t *testing.T) {
	out, err := BuiltinTransforms()["csvToList"].Forward(nil, document.Text(""))
	require.NoError(t, err)
	assert.Equal(t, document.Array{}, out)
}

func mustDecimal(t *testing.T, s string) document.Decimal {
	t.Helper()
	d, err := document.NewDecimal(s)
	require.NoError(t, err)
	return d
}
