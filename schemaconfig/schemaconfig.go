// Package schemaconfig loads a composed federation schema from a JSON
// fixture. Schema composition from individual subgraph SDLs is out of
// scope for the planner itself (it receives an already-composed schema);
// this package exists only to get a *queryplanner.Schema into the demo CLI
// and tests without hand-building Go literals for every field.
package schemaconfig

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/samsarahq/go/oops"

	"github.com/thunderql/queryplanner"
)

// Document is the on-disk JSON shape: a map of type name to type
// definition, plus the names of the root operation types.
type Document struct {
	Types        map[string]*typeDef `json:"types"`
	Query        string              `json:"query"`
	Mutation     string              `json:"mutation,omitempty"`
	Subscription string              `json:"subscription,omitempty"`
}

type typeDef struct {
	Kind          string              `json:"kind"` // object | interface | union | scalar | enum
	Fields        map[string]*fieldDef `json:"fields,omitempty"`
	Keys          []keyDef             `json:"keys,omitempty"`
	PossibleTypes []string             `json:"possibleTypes,omitempty"` // interface members
	Types         []string             `json:"types,omitempty"`         // union members
	EnumValues    []string             `json:"enumValues,omitempty"`
}

type keyDef struct {
	Service string   `json:"service"`
	Fields  []string `json:"fields"`
}

type fieldDef struct {
	Type     string   `json:"type"`
	Owner    string   `json:"owner,omitempty"`
	Requires []string `json:"requires,omitempty"`
	Provides []string `json:"provides,omitempty"`
	External bool     `json:"external,omitempty"`
}

// Load decodes a composed-schema JSON document from r and builds a
// *queryplanner.Schema.
func Load(r io.Reader) (*queryplanner.Schema, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, oops.Wrapf(err, "decoding composed schema")
	}
	return build(&doc)
}

// build wires every declared type together in two passes: first create a
// placeholder for every named type (so forward references resolve),
// then fill in fields/keys/possible-types once every name is known.
func build(doc *Document) (*queryplanner.Schema, error) {
	named := make(map[string]queryplanner.Type, len(doc.Types))
	objects := make(map[string]*queryplanner.Object)
	interfaces := make(map[string]*queryplanner.Interface)
	unions := make(map[string]*queryplanner.Union)

	names := sortedKeys(doc.Types)
	for _, name := range names {
		def := doc.Types[name]
		switch def.Kind {
		case "object":
			o := &queryplanner.Object{Name: name, Fields: map[string]*queryplanner.Field{}}
			objects[name] = o
			named[name] = o
		case "interface":
			i := &queryplanner.Interface{Name: name, Fields: map[string]*queryplanner.Field{}}
			interfaces[name] = i
			named[name] = i
		case "union":
			u := &queryplanner.Union{Name: name, Types: map[string]*queryplanner.Object{}}
			unions[name] = u
			named[name] = u
		case "enum":
			named[name] = &queryplanner.Enum{Name: name, Values: def.EnumValues}
		case "scalar":
			named[name] = &queryplanner.Scalar{Name: name}
		default:
			return nil, oops.Errorf("type %s: unknown kind %q", name, def.Kind)
		}
	}

	for _, name := range names {
		def := doc.Types[name]
		switch def.Kind {
		case "object":
			o := objects[name]
			for _, k := range def.Keys {
				o.Keys = append(o.Keys, queryplanner.KeySet{Service: k.Service, Fields: append([]string(nil), k.Fields...)})
			}
			if err := fillFields(o.Fields, def.Fields, named); err != nil {
				return nil, oops.Wrapf(err, "type %s", name)
			}
		case "interface":
			i := interfaces[name]
			for _, member := range def.PossibleTypes {
				obj, ok := objects[member]
				if !ok {
					return nil, oops.Errorf("interface %s: possible type %q is not an object type", name, member)
				}
				i.PossibleTypes = append(i.PossibleTypes, obj)
			}
			if err := fillFields(i.Fields, def.Fields, named); err != nil {
				return nil, oops.Wrapf(err, "type %s", name)
			}
		case "union":
			u := unions[name]
			for _, member := range def.Types {
				obj, ok := objects[member]
				if !ok {
					return nil, oops.Errorf("union %s: member %q is not an object type", name, member)
				}
				u.Types[member] = obj
			}
		}
	}

	schema := &queryplanner.Schema{Types: named}

	root, err := rootObject(objects, doc.Query, "query")
	if err != nil {
		return nil, err
	}
	schema.Query = root

	if doc.Mutation != "" {
		m, err := rootObject(objects, doc.Mutation, "mutation")
		if err != nil {
			return nil, err
		}
		schema.Mutation = m
	}
	if doc.Subscription != "" {
		s, err := rootObject(objects, doc.Subscription, "subscription")
		if err != nil {
			return nil, err
		}
		schema.Subscription = s
	}

	return schema, nil
}

func rootObject(objects map[string]*queryplanner.Object, name, kind string) (*queryplanner.Object, error) {
	o, ok := objects[name]
	if !ok {
		return nil, oops.Errorf("%s root type %q is not declared as an object", kind, name)
	}
	return o, nil
}

func fillFields(dst map[string]*queryplanner.Field, src map[string]*fieldDef, named map[string]queryplanner.Type) error {
	for fieldName, fd := range src {
		t, err := parseType(fd.Type, named)
		if err != nil {
			return oops.Wrapf(err, "field %s", fieldName)
		}
		dst[fieldName] = &queryplanner.Field{
			Name:     fieldName,
			Type:     t,
			Owner:    fd.Owner,
			Requires: fd.Requires,
			Provides: fd.Provides,
			External: fd.External,
		}
	}
	return nil
}

// parseType reads a compact GraphQL type reference such as "[Review!]!".
func parseType(s string, named map[string]queryplanner.Type) (queryplanner.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, oops.Errorf("empty type reference")
	}

	if strings.HasSuffix(s, "!") {
		inner, err := parseType(s[:len(s)-1], named)
		if err != nil {
			return nil, err
		}
		return &queryplanner.NonNull{Type: inner}, nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner, err := parseType(s[1:len(s)-1], named)
		if err != nil {
			return nil, err
		}
		return &queryplanner.List{Type: inner}, nil
	}

	t, ok := named[s]
	if !ok {
		return nil, oops.Errorf("unknown named type %q", s)
	}
	return t, nil
}

func sortedKeys(m map[string]*typeDef) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
