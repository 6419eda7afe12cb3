package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnum(t *testing.T) {
	e, err := NewEnum("V1", "V2", "V3")
	require.NoError(t, err)

	v1, v3 := e.Must("V1"), e.Must("V3")
	assert.Equal(t, v3, e.Current())
	assert.Equal(t, -1, e.Compare(v1, v3))
	assert.Equal(t, 0, e.Compare(v1, e.Must("V1")))
	assert.Equal(t, 2, v3.Ordinal())
	assert.Equal(t, "V3", e.Format(v3))
	assert.Len(t, e.Symbols(), 3)

	_, err = e.Parse("V9")
	assert.ErrorIs(t, err, ErrUnknownVersion)

	_, err = NewEnum()
	assert.Error(t, err)
	_, err = NewEnum("A", "A")
	assert.Error(t, err)
	_, err = NewEnum("A", "")
	assert.Error(t, err)

	assert.Panics(t, func() { e.Must("nope") })
}

func TestSemver(t *testing.T) {
	s, err := NewSemver("2.1")
	require.NoError(t, err)
	assert.Equal(t, "v2.1.0", s.Current())

	a, err := s.Parse("1.10.0")
	require.NoError(t, err)
	b, err := s.Parse("v1.9.3")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Compare(a, b))
	assert.Equal(t, "v1.10.0", s.Format(a))

	pre, err := s.Parse("1.10.0-rc.1")
	require.NoError(t, err)
	assert.Equal(t, -1, s.Compare(pre, a))

	_, err = s.Parse("latest")
	assert.ErrorIs(t, err, ErrUnknownVersion)
	_, err = NewSemver("")
	assert.Error(t, err)
}

func TestInteger(t *testing.T) {
	i := NewInteger(4)
	assert.Equal(t, int64(4), i.Current())

	v, err := i.Parse("10")
	require.NoError(t, err)
	assert.Equal(t, 1, i.Compare(v, 9))
	assert.Equal(t, "10", i.Format(v))

	_, err = i.Parse("ten")
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestLexical(t *testing.T) {
	l := NewLexical("2024-06")
	assert.Equal(t, -1, l.Compare("2024-01", "2024-06"))

	v, err := l.Parse("2023-12")
	require.NoError(t, err)
	assert.Equal(t, "2023-12", l.Format(v))

	_, err = l.Parse("")
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
