package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Parse decodes one JSON value. Object attribute order is kept and numbers are decoded
// exactly: integer literals as Integer, all other numbers as Decimal.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return n, nil
}

// ParseObject decodes a JSON document that must be an object.
func ParseObject(data []byte) (*Object, error) {
	n, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return AsObject(n)
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", len(arr), err)
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return Text(t), nil
	case json.Number:
		return numberNode(string(t))
	}
	return nil, fmt.Errorf("unexpected token %T", tok)
}

// Marshal renders n as compact JSON.
func Marshal(n Node) ([]byte, error) {
	var b bytes.Buffer
	if err := writeNode(&b, n); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// MarshalIndent renders n as indented JSON.
func MarshalIndent(n Node, prefix, indent string) ([]byte, error) {
	raw, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := json.Indent(&b, raw, prefix, indent); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeNode(b *bytes.Buffer, n Node) error {
	switch v := n.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case Text:
		return writeString(b, string(v))
	case Decimal:
		b.WriteString(formatDecimal(v.Value))
	case Integer:
		b.WriteString(bigOrZero(v.Value).String())
	case Float:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return fmt.Errorf("unsupported float value %v", v.Value)
		}
		bits := v.Bits
		if bits != 32 {
			bits = 64
		}
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, bits))
	case Opaque:
		raw, err := json.Marshal(v.Value)
		if err != nil {
			return fmt.Errorf("opaque %T: %w", v.Value, err)
		}
		b.Write(raw)
	case Array:
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeNode(b, e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')
		i := 0
		for k, e := range v.All() {
			if i > 0 {
				b.WriteByte(',')
			}
			i++
			if err := writeString(b, k); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeNode(b, e); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("unsupported node %T", n)
	}
	return nil
}

func writeString(b *bytes.Buffer, s string) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	b.Write(raw)
	return nil
}

// maxFixedZeros bounds the leading zeros formatDecimal writes before it switches to
// exponent form.
const maxFixedZeros = 64

// formatDecimal prints d with exactly the digits it was authored with. Non negative
// exponents always use exponent form so the literal parses back as a Decimal.
func formatDecimal(d decimal.Decimal) string {
	exp := d.Exponent()
	coef := d.Coefficient()
	if exp < 0 && int64(-exp) <= int64(len(new(big.Int).Abs(coef).String()))+maxFixedZeros {
		return d.StringFixed(-exp)
	}
	return coef.String() + "e" + strconv.FormatInt(int64(exp), 10)
}

func (n Null) MarshalJSON() ([]byte, error)    { return Marshal(n) }
func (n Bool) MarshalJSON() ([]byte, error)    { return Marshal(n) }
func (n Text) MarshalJSON() ([]byte, error)    { return Marshal(n) }
func (n Decimal) MarshalJSON() ([]byte, error) { return Marshal(n) }
func (n Integer) MarshalJSON() ([]byte, error) { return Marshal(n) }
func (n Float) MarshalJSON() ([]byte, error)   { return Marshal(n) }
func (n Opaque) MarshalJSON() ([]byte, error)  { return Marshal(n) }
func (n Array) MarshalJSON() ([]byte, error)   { return Marshal(n) }
func (o *Object) MarshalJSON() ([]byte, error) { return Marshal(o) }

// UnmarshalJSON replaces the object's attributes with the decoded JSON object.
func (o *Object) UnmarshalJSON(data []byte) error {
	parsed, err := ParseObject(data)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}
