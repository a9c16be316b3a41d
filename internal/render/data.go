package render

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadData reads render data from a YAML or JSON file.
func LoadData(path string) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data %s: %w", path, err)
	}
	m, err := ParseData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	return m, nil
}

// ParseData decodes a YAML (or JSON) document whose top level is a mapping.
// Mapping order is preserved.
func ParseData(raw []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return NewMap(), nil
	}
	v, err := fromNode(&doc)
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case *Map:
		return m, nil
	case nil:
		return NewMap(), nil
	default:
		return nil, fmt.Errorf("data must be a mapping, got %T", v)
	}
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			// 0x.., 0o.. и прочее, что yaml понимает как int
			i, perr := strconv.ParseInt(n.Value, 0, 64)
			if perr != nil {
				return nil, err
			}
			return float64(i), nil
		}
		return f, nil
	default:
		return n.Value, nil
	}
}
