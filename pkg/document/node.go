package document

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Kind names the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindText
	KindDecimal
	KindInteger
	KindFloat
	KindOpaque
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindText:
		return "text"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindOpaque:
		return "opaque"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Node is one value in a document tree. The set of implementations is closed.
type Node interface {
	Kind() Kind
	node()
}

// Null is the explicit null/absent marker.
type Null struct{}

// Bool is a boolean leaf.
type Bool bool

// Text is a string leaf.
type Text string

// Decimal is an exact arbitrary-precision decimal leaf.
type Decimal struct {
	Value decimal.Decimal
}

// Integer is an exact arbitrary-precision integer leaf. The wrapped value must not be
// mutated once it is part of a document.
type Integer struct {
	Value *big.Int
}

// Float is a binary floating point leaf. Bits records whether the value was authored as a
// 32 or 64 bit float so it renders with the matching shortest representation.
type Float struct {
	Value float64
	Bits  int
}

// Opaque wraps a host value the document model cannot represent. It is never inspected,
// only rendered with encoding/json.
type Opaque struct {
	Value any
}

// Array is an ordered list of nodes.
type Array []Node

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Text) Kind() Kind    { return KindText }
func (Decimal) Kind() Kind { return KindDecimal }
func (Integer) Kind() Kind { return KindInteger }
func (Float) Kind() Kind   { return KindFloat }
func (Opaque) Kind() Kind  { return KindOpaque }
func (Array) Kind() Kind   { return KindArray }

func (Null) node()    {}
func (Bool) node()    {}
func (Text) node()    {}
func (Decimal) node() {}
func (Integer) node() {}
func (Float) node()   {}
func (Opaque) node()  {}
func (Array) node()   {}

// NewInteger returns an Integer node for i.
func NewInteger(i int64) Integer {
	return Integer{Value: big.NewInt(i)}
}

// NewDecimal parses s as an exact decimal node.
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Value: d}, nil
}

// Clone returns a deep copy of n. Opaque values are shared.
func Clone(n Node) Node {
	switch v := n.(type) {
	case nil:
		return Null{}
	case *Object:
		return v.Clone()
	case Array:
		out := make(Array, len(v))
		for i, e := range v {
			out[i] = Clone(e)
		}
		return out
	case Integer:
		if v.Value == nil {
			return Integer{Value: new(big.Int)}
		}
		return Integer{Value: new(big.Int).Set(v.Value)}
	}
	return n
}

// Equal reports whether a and b hold the same value. Objects compare without regard to
// attribute order; numeric variants only equal the same variant.
func Equal(a, b Node) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case Text:
		return x == b.(Text)
	case Decimal:
		y := b.(Decimal)
		return x.Value.Equal(y.Value) && x.Value.Exponent() == y.Value.Exponent()
	case Integer:
		y := b.(Integer)
		return bigOrZero(x.Value).Cmp(bigOrZero(y.Value)) == 0
	case Float:
		return x.Value == b.(Float).Value
	case Opaque:
		return equalOpaque(x.Value, b.(Opaque).Value)
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		return x.Equal(b.(*Object))
	}
	return false
}

func bigOrZero(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return i
}

func equalOpaque(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
