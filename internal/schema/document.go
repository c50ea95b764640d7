package schema

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/funtype/pkg/value"
)

// DecodeYAML converts a YAML document into a runtime value. The walk
// reads resolved node tags rather than decoded Go values, so binary
// payloads stay bytes and document order survives into mappings.
func DecodeYAML(data []byte) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return value.NIL, nil
	}
	w := &yamlWalker{expanding: make(map[*yaml.Node]bool)}
	return w.value(doc.Content[0])
}

// yamlWalker tracks alias expansion; an anchor whose value contains
// itself produces a cyclic node graph, which must fail instead of
// recursing forever.
type yamlWalker struct {
	expanding map[*yaml.Node]bool
}

func (w *yamlWalker) value(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if w.expanding[n] {
			return nil, fmt.Errorf("line %d: anchor %q value contains itself", n.Line, n.Value)
		}
		w.expanding[n] = true
		v, err := w.value(n.Alias)
		delete(w.expanding, n)
		return v, err

	case yaml.ScalarNode:
		return yamlScalar(n)

	case yaml.SequenceNode:
		elements := make([]value.Value, len(n.Content))
		for i, c := range n.Content {
			el, err := w.value(c)
			if err != nil {
				return nil, err
			}
			elements[i] = el
		}
		return &value.List{Elements: elements}, nil

	case yaml.MappingNode:
		if n.ShortTag() == "!!set" {
			members := make([]value.Value, 0, len(n.Content)/2)
			for i := 0; i+1 < len(n.Content); i += 2 {
				member, err := w.value(n.Content[i])
				if err != nil {
					return nil, err
				}
				members = append(members, member)
			}
			return value.NewSet(members...), nil
		}
		m := value.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, err := w.value(n.Content[i])
			if err != nil {
				return nil, err
			}
			val, err := w.value(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func yamlScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.NIL, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: integer out of range: %s", n.Line, n.Value)
		}
		return &value.Integer{Value: i}, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return &value.Float{Value: f}, nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad binary payload: %w", n.Line, err)
		}
		return &value.Bytes{Value: b}, nil
	case "!!str", "!!timestamp":
		return &value.Text{Value: n.Value}, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML tag %s", n.Line, n.ShortTag())
	}
}

// DecodeJSON converts a JSON document into a runtime value. Numbers
// without a fraction or exponent become integers; object key order is
// preserved.
func DecodeJSON(data []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("JSON parse error: trailing content after document")
	}
	return v, nil
}

func jsonValue(dec *json.Decoder) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return jsonToken(dec, tok)
}

func jsonToken(dec *json.Decoder, tok json.Token) (value.Value, error) {
	switch t := tok.(type) {
	case nil:
		return value.NIL, nil
	case bool:
		return value.Bool(t), nil
	case string:
		return &value.Text{Value: t}, nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return &value.Integer{Value: i}, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad number %s", t)
		}
		return &value.Float{Value: f}, nil
	case json.Delim:
		switch t {
		case '[':
			list := &value.List{}
			for dec.More() {
				el, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements, el)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return nil, err
			}
			return list, nil
		case '{':
			m := value.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				val, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(&value.Text{Value: key}, val)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
