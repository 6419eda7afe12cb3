package migrate

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// BuiltinTransforms returns the transforms change sets can name without registering code.
// Every entry's Forward and Backward are inverses for well formed values, and each name
// also exists reversed ("integerToText", "listToScalar", "decimalToCents", "listToCsv").
//
//	textToInteger   "42"        <-> 42
//	scalarToList    "a"         <-> ["a"]
//	centsToDecimal  1999        <-> 19.99
//	csvToList       "a,b"       <-> ["a","b"]
func BuiltinTransforms() Transforms {
	base := Transforms{
		"textToInteger":  {Forward: textToInteger, Backward: integerToText},
		"scalarToList":   {Forward: scalarToList, Backward: listToScalar},
		"centsToDecimal": {Forward: centsToDecimal, Backward: decimalToCents},
		"csvToList":      {Forward: csvToList, Backward: listToCSV},
	}
	t := make(Transforms, 2*len(base))
	for name, tr := range base {
		t[name] = tr
		t[inverseName(name)] = Transform{Forward: tr.Backward, Backward: tr.Forward}
	}
	return t
}

// inverseName turns "aToB" into "bToA".
func inverseName(name string) string {
	i := strings.Index(name, "To")
	if i <= 0 {
		return name + "Inverse"
	}
	a, b := name[:i], name[i+2:]
	return strings.ToLower(b[:1]) + b[1:] + "To" + strings.ToUpper(a[:1]) + a[1:]
}

func textToInteger(_ *document.Object, cur document.Node) (any, error) {
	s, err := document.AsText(cur)
	if err != nil {
		return nil, err
	}
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrShape, s)
	}
	return i, nil
}

func integerToText(_ *document.Object, cur document.Node) (any, error) {
	i, err := document.AsInteger(cur)
	if err != nil {
		return nil, err
	}
	return i.String(), nil
}

func scalarToList(_ *document.Object, cur document.Node) (any, error) {
	switch cur.Kind() {
	case document.KindObject, document.KindArray:
		return nil, fmt.Errorf("%w: cannot wrap %s", ErrShape, cur.Kind())
	}
	return document.Array{cur}, nil
}

func listToScalar(_ *document.Object, cur document.Node) (any, error) {
	a, err := document.AsArray(cur)
	if err != nil {
		return nil, err
	}
	if len(a) != 1 {
		return nil, fmt.Errorf("%w: list has %d elements, want 1", ErrShape, len(a))
	}
	return a[0], nil
}

func centsToDecimal(_ *document.Object, cur document.Node) (any, error) {
	i, err := document.AsInteger(cur)
	if err != nil {
		return nil, err
	}
	return decimal.NewFromBigInt(i, -2), nil
}

func decimalToCents(_ *document.Object, cur document.Node) (any, error) {
	d, err := document.AsDecimal(cur)
	if err != nil {
		return nil, err
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return nil, fmt.Errorf("%w: %s has sub-cent digits", ErrShape, d)
	}
	return cents.BigInt(), nil
}

func csvToList(_ *document.Object, cur document.Node) (any, error) {
	s, err := document.AsText(cur)
	if err != nil {
		return nil, err
	}
	out := document.Array{}
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		out = append(out, document.Text(part))
	}
	return out, nil
}

func listToCSV(_ *document.Object, cur document.Node) (any, error) {
	a, err := document.AsArray(cur)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(a))
	for i, e := range a {
		s, err := document.AsText(e)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		if strings.Contains(s, ",") {
			return nil, fmt.Errorf("%w: element %q contains a comma", ErrShape, s)
		}
		parts[i] = s
	}
	return strings.Join(parts, ","), nil
}
