package document

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"bool", true, KindBool},
		{"string", "x", KindText},
		{"decimal", decimal.RequireFromString("1.5"), KindDecimal},
		{"big int", big.NewInt(7), KindInteger},
		{"int", 3, KindInteger},
		{"uint64", uint64(1) << 63, KindInteger},
		{"float64", 1.25, KindFloat},
		{"float32", float32(1.25), KindFloat},
		{"node", Text("kept"), KindText},
		{"struct", struct{ A int }{1}, KindOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromValue(tt.in).Kind())
		})
	}

	f := FromValue(float32(0.1)).(Float)
	assert.Equal(t, 32, f.Bits)
	b, err := Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, "0.1", string(b))
}

func TestObjectOrderAndRemove(t *testing.T) {
	o := NewObject()
	o.SetValue("b", 1)
	o.SetValue("a", 2)
	o.SetValue("b", 3)
	assert.Equal(t, []string{"b", "a"}, o.Keys())

	old, ok := o.Remove("b")
	assert.True(t, ok)
	assert.True(t, Equal(NewInteger(3), old))
	assert.Equal(t, []string{"a"}, o.Keys())

	_, ok = o.Remove("missing")
	assert.False(t, ok)

	o.Set("n", nil)
	assert.True(t, o.Has("n"))
	n, _ := o.Get("n")
	assert.True(t, IsNull(n))
}

func TestObjectEqualIgnoresOrder(t *testing.T) {
	a := NewObject()
	a.SetValue("x", 1)
	a.SetValue("y", "two")
	b := NewObject()
	b.SetValue("y", "two")
	b.SetValue("x", 1)
	assert.True(t, Equal(a, b))

	b.SetValue("x", 2)
	assert.False(t, Equal(a, b))
	assert.False(t, Equal(NewInteger(1), mustDecimal(t, "1")))
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewObject()
	inner.SetValue("v", 1)
	o := NewObject()
	o.Set("inner", inner)
	o.Set("list", Array{Text("a")})

	c := o.Clone()
	inner.SetValue("v", 2)
	got, _, err := Lookup(c, "inner/v")
	require.NoError(t, err)
	assert.True(t, Equal(NewInteger(1), got))
}

func TestParseKeepsExactNumbers(t *testing.T) {
	in := `{"price":1.50,"big":123456789012345678901234567890,"tiny":0.000000000000000000000001,"name":"x","ok":true,"none":null,"list":[1,2.0]}`
	n, err := Parse([]byte(in))
	require.NoError(t, err)

	obj, err := AsObject(n)
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "big", "tiny", "name", "ok", "none", "list"}, obj.Keys())

	price, _ := obj.Get("price")
	assert.Equal(t, KindDecimal, price.Kind())
	huge, _ := obj.Get("big")
	assert.Equal(t, KindInteger, huge.Kind())

	out, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))

	// exponents are kept instead of being expanded into digits
	for lit, want := range map[string]string{
		"1e5":         "1e5",
		"1.5e300":     "15e299",
		"1e-400":      "1e-400",
		"-2.50e3":     "-250e1",
		"1e20000000":  "1e20000000",
		"0.000000001": "0.000000001",
	} {
		n, err := Parse([]byte(lit))
		require.NoError(t, err, lit)
		require.Equal(t, KindDecimal, n.Kind(), lit)

		out, err := Marshal(n)
		require.NoError(t, err, lit)
		assert.Equal(t, want, string(out), lit)

		back, err := Parse(out)
		require.NoError(t, err, lit)
		assert.True(t, Equal(n, back), lit)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"a":1} {}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`[1]`))
	assert.ErrorIs(t, err, ErrKind)
}

func TestMarshalRejectsNonFiniteFloats(t *testing.T) {
	o := NewObject()
	o.Set("f", Float{Value: math.Inf(1), Bits: 64})
	_, err := Marshal(o)
	assert.Error(t, err)
}

func TestAccessorsReportKind(t *testing.T) {
	_, err := AsText(NewInteger(1))
	assert.ErrorIs(t, err, ErrKind)
	assert.Contains(t, err.Error(), "want text, got integer")

	i, err := AsInteger(NewInteger(5))
	require.NoError(t, err)
	i.SetInt64(6)
	orig := NewInteger(5)
	got, _ := AsInteger(orig)
	assert.Equal(t, int64(5), got.Int64())
}

func TestPathHelpers(t *testing.T) {
	doc, err := ParseObject([]byte(`{"meta":{"version":"V1"},"lines":[{"qty":1}]}`))
	require.NoError(t, err)

	n, ok, err := Lookup(doc, "meta/version")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Text("V1"), n)

	n, ok, err = Lookup(doc, "lines/0/qty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, Equal(NewInteger(1), n))

	_, ok, err = Lookup(doc, "lines/5/qty")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Lookup(doc, "lines/first")
	assert.Error(t, err)

	require.NoError(t, SetPath(doc, "a/b/c", Text("deep")))
	n, ok, _ = Lookup(doc, "a/b/c")
	assert.True(t, ok)
	assert.Equal(t, Text("deep"), n)

	assert.Error(t, SetPath(doc, "fresh/0", Text("x")))
	require.NoError(t, SetPath(doc, "lines/0/qty", NewInteger(2)))

	require.NoError(t, DeletePath(doc, "meta/version"))
	assert.False(t, mustGet(t, doc, "meta").(*Object).Has("version"))
	require.NoError(t, DeletePath(doc, "nope/nothing"))
	assert.Error(t, DeletePath(doc, "lines/0"))
}

func TestFromYAML(t *testing.T) {
	src := `
price: 19.90
count: 0x10
big: 123456789012345678901234567890
name: widget
tags: [a, b]
empty: ~
flag: yes
on: true
inf: .inf
`
	var y yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &y))
	n, err := FromYAML(&y)
	require.NoError(t, err)
	obj, err := AsObject(n)
	require.NoError(t, err)

	assert.Equal(t, "19.90", string(mustMarshal(t, mustGet(t, obj, "price"))))
	assert.True(t, Equal(NewInteger(16), mustGet(t, obj, "count")))
	assert.Equal(t, "123456789012345678901234567890", string(mustMarshal(t, mustGet(t, obj, "big"))))
	assert.Equal(t, KindInteger, mustGet(t, obj, "big").Kind())
	assert.Equal(t, Text("widget"), mustGet(t, obj, "name"))
	assert.True(t, Equal(Array{Text("a"), Text("b")}, mustGet(t, obj, "tags")))
	assert.True(t, IsNull(mustGet(t, obj, "empty")))
	assert.Equal(t, Text("yes"), mustGet(t, obj, "flag"))
	assert.Equal(t, Bool(true), mustGet(t, obj, "on"))
	assert.Equal(t, KindFloat, mustGet(t, obj, "inf").Kind())
	assert.Equal(t, []string{"price", "count", "big", "name", "tags", "empty", "flag", "on", "inf"}, obj.Keys())
}

func mustGet(t *testing.T, o *Object, name string) Node {
	t.Helper()
	n, ok := o.Get(name)
	require.True(t, ok, "attribute %s", name)
	return n
}

func mustMarshal(t *testing.T, n Node) []byte {
	t.Helper()
	b, err := Marshal(n)
	require.NoError(t, err)
	return b
}

func mustDecimal(t *testing.T, s string) Decimal {
	t.Helper()
	d, err := NewDecimal(s)
	require.NoError(t, err)
	return d
}
