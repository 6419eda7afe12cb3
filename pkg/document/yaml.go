package document

import (
	"fmt"
	"math/big"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded YAML node into a document node. Scalars are mapped by their
// resolved tag so numbers keep the digits they were written with: !!int becomes Integer
// and !!float becomes Decimal.
func FromYAML(y *yaml.Node) (Node, error) {
	if y == nil {
		return Null{}, nil
	}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null{}, nil
		}
		return FromYAML(y.Content[0])
	case yaml.AliasNode:
		return FromYAML(y.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			n, err := FromYAML(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.Value, err)
			}
			obj.Set(k.Value, n)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make(Array, 0, len(y.Content))
		for i, c := range y.Content {
			n, err := FromYAML(c)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, n)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(y)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
}

func yamlScalar(y *yaml.Node) (Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		lit := strings.ReplaceAll(y.Value, "_", "")
		i, ok := new(big.Int).SetString(lit, 0)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid integer %q", y.Line, y.Value)
		}
		return Integer{Value: i}, nil
	case "!!float":
		// integers too wide for int64 resolve as !!float
		d, err := numberNode(strings.ReplaceAll(y.Value, "_", ""))
		if err != nil {
			// .inf and .nan have no exact decimal form
			var f float64
			if derr := y.Decode(&f); derr != nil {
				return nil, derr
			}
			return Float{Value: f, Bits: 64}, nil
		}
		return d, nil
	case "!!str":
		return Text(y.Value), nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml tag %s", y.Line, y.ShortTag())
}
