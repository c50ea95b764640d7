package gen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// Render encodes a derived schema as funtype.yaml text. The output is
// deterministic and loads back through the schema package unchanged.
func Render(r *Result) ([]byte, error) {
	body := &yaml.Node{Kind: yaml.MappingNode}
	for _, decl := range r.Decls {
		val, err := declNode(decl)
		if err != nil {
			return nil, err
		}
		body.Content = append(body.Content, scalar(decl.Name), val)
	}

	key := scalar("types")
	key.HeadComment = fmt.Sprintf("Code generated by descgen from %s. DO NOT EDIT.",
		strings.Join(r.Packages, ", "))
	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{key, body}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	return buf.Bytes(), nil
}

func declNode(decl *Decl) (*yaml.Node, error) {
	switch decl.Kind {
	case DeclAlias:
		return scalar(decl.Expr), nil

	case DeclLiteral:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, c := range decl.Consts {
			n, err := constNode(c)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return mapping(scalar("literal"), seq), nil

	case DeclRecord:
		return mapping(scalar("record"), fieldsNode(decl.Fields)), nil

	case DeclClass:
		if len(decl.Params) > 0 {
			params := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, p := range decl.Params {
				params.Content = append(params.Content, scalar(p))
			}
			return mapping(scalar("params"), params, scalar("class"), fieldsNode(decl.Fields)), nil
		}
		return mapping(scalar("class"), fieldsNode(decl.Fields)), nil

	default:
		return nil, fmt.Errorf("declaration %s has unknown kind %d", decl.Name, decl.Kind)
	}
}

func fieldsNode(fields []Field) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		key := f.Name
		if f.Optional {
			key += "?"
		}
		m.Content = append(m.Content, scalar(key), scalar(f.Expr))
	}
	return m
}

// constNode encodes a literal constant with its native YAML tag so
// strings that look like numbers or booleans stay strings when the
// schema is read back.
func constNode(c descriptor.Constant) (*yaml.Node, error) {
	n := &yaml.Node{}
	switch cv := c.(type) {
	case descriptor.BoolConst:
		return n, n.Encode(cv.Value)
	case descriptor.IntConst:
		return n, n.Encode(cv.Value)
	case descriptor.FloatConst:
		// An explicit tag keeps integral floats from reading back as
		// ints.
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!float",
			Value: strconv.FormatFloat(cv.Value, 'g', -1, 64),
		}, nil
	case descriptor.TextConst:
		return n, n.Encode(cv.Value)
	default:
		return nil, fmt.Errorf("literal constant %s cannot appear in a schema file", c.Repr())
	}
}

func mapping(kvs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: kvs}
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
