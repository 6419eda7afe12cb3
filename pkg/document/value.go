package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrKind is returned when a node holds a different variant than the caller expects.
var ErrKind = errors.New("unexpected node kind")

// FromValue converts a host value into a leaf node, most specific type first. Values that
// fit no variant are wrapped verbatim in Opaque.
func FromValue(v any) Node {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Node:
		return x
	case bool:
		return Bool(x)
	case string:
		return Text(x)
	case decimal.Decimal:
		return Decimal{Value: x}
	case *decimal.Decimal:
		if x == nil {
			return Null{}
		}
		return Decimal{Value: *x}
	case *big.Int:
		if x == nil {
			return Null{}
		}
		return Integer{Value: new(big.Int).Set(x)}
	case big.Int:
		return Integer{Value: new(big.Int).Set(&x)}
	case float64:
		return Float{Value: x, Bits: 64}
	case float32:
		return Float{Value: float64(x), Bits: 32}
	case int:
		return NewInteger(int64(x))
	case int8:
		return NewInteger(int64(x))
	case int16:
		return NewInteger(int64(x))
	case int32:
		return NewInteger(int64(x))
	case int64:
		return NewInteger(x)
	case uint:
		return Integer{Value: new(big.Int).SetUint64(uint64(x))}
	case uint8:
		return NewInteger(int64(x))
	case uint16:
		return NewInteger(int64(x))
	case uint32:
		return NewInteger(int64(x))
	case uint64:
		return Integer{Value: new(big.Int).SetUint64(x)}
	case json.Number:
		if n, err := numberNode(string(x)); err == nil {
			return n
		}
	}
	return Opaque{Value: v}
}

// numberNode classifies a JSON number literal: integers become Integer, everything with a
// fraction or exponent becomes Decimal.
func numberNode(lit string) (Node, error) {
	if !strings.ContainsAny(lit, ".eE") {
		i, ok := new(big.Int).SetString(lit, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", lit)
		}
		return Integer{Value: i}, nil
	}
	return NewDecimal(lit)
}

func kindError(want Kind, got Node) error {
	if got == nil {
		got = Null{}
	}
	return fmt.Errorf("%w: want %s, got %s", ErrKind, want, got.Kind())
}

// AsBool returns the boolean held by n or ErrKind.
func AsBool(n Node) (bool, error) {
	if b, ok := n.(Bool); ok {
		return bool(b), nil
	}
	return false, kindError(KindBool, n)
}

// AsText returns the string held by n or ErrKind.
func AsText(n Node) (string, error) {
	if t, ok := n.(Text); ok {
		return string(t), nil
	}
	return "", kindError(KindText, n)
}

// AsDecimal returns the decimal held by n or ErrKind.
func AsDecimal(n Node) (decimal.Decimal, error) {
	if d, ok := n.(Decimal); ok {
		return d.Value, nil
	}
	return decimal.Decimal{}, kindError(KindDecimal, n)
}

// AsInteger returns a copy of the integer held by n or ErrKind.
func AsInteger(n Node) (*big.Int, error) {
	if i, ok := n.(Integer); ok {
		return new(big.Int).Set(bigOrZero(i.Value)), nil
	}
	return nil, kindError(KindInteger, n)
}

// AsFloat returns the float held by n or ErrKind.
func AsFloat(n Node) (float64, error) {
	if f, ok := n.(Float); ok {
		return f.Value, nil
	}
	return 0, kindError(KindFloat, n)
}

// AsObject returns the object held by n or ErrKind.
func AsObject(n Node) (*Object, error) {
	if o, ok := n.(*Object); ok && o != nil {
		return o, nil
	}
	return nil, kindError(KindObject, n)
}

// AsArray returns the array held by n or ErrKind.
func AsArray(n Node) (Array, error) {
	if a, ok := n.(Array); ok {
		return a, nil
	}
	return nil, kindError(KindArray, n)
}

// IsNull reports whether n is absent or the Null marker.
func IsNull(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(Null)
	return ok
}
