package queryplanner

import (
	"sort"

	"github.com/samsarahq/go/oops"
)

// Type is a federation-aware GraphQL type. Exactly one of the concrete
// implementations (*Object, *Interface, *Union, *Scalar, *Enum, *InputObject,
// *List, *NonNull) is used for any given Type value.
type Type interface {
	String() string
	isType()
}

// Scalar is a leaf value, e.g. "String" or "ID".
type Scalar struct{ Name string }

func (s *Scalar) isType()        {}
func (s *Scalar) String() string { return s.Name }

// Enum is a leaf value restricted to a fixed set of names.
type Enum struct {
	Name   string
	Values []string
}

func (e *Enum) isType()        {}
func (e *Enum) String() string { return e.Name }

// InputObject describes the shape of an argument value. The planner keeps
// input objects in Schema.Types but never inspects or resolves them.
type InputObject struct {
	Name   string
	Fields map[string]Type
}

func (i *InputObject) isType()        {}
func (i *InputObject) String() string { return i.Name }

// List wraps an element type.
type List struct{ Type Type }

func (l *List) isType()        {}
func (l *List) String() string { return "[" + l.Type.String() + "]" }

// NonNull wraps a type that cannot be null.
type NonNull struct{ Type Type }

func (n *NonNull) isType()        {}
func (n *NonNull) String() string { return n.Type.String() + "!" }

// KeySet is one declared identifier for an entity: an ordered list of field
// names (dotted paths are not supported; composite keys list sibling
// fields) that a service can use to reconstruct the entity from a
// representation.
type KeySet struct {
	// Service is the service that declared (and can resolve) this key.
	Service string
	// Fields is the ordered list of field names making up the key.
	Fields []string
}

// Object is a composite output type, optionally an entity (len(Keys) > 0).
type Object struct {
	Name   string
	Fields map[string]*Field
	// Keys lists every declared key field set for this type, in
	// declaration order. A type with no keys cannot be the target of an
	// entity hop (§4.2.2); the planner errors with UNSATISFIABLE_KEY if a
	// dependent hop needs one anyway.
	Keys []KeySet
}

func (o *Object) isType()        {}
func (o *Object) String() string { return o.Name }

// Interface is an abstract type; Object values in PossibleTypes implement it.
type Interface struct {
	Name          string
	Fields        map[string]*Field
	PossibleTypes []*Object
}

func (i *Interface) isType()        {}
func (i *Interface) String() string { return i.Name }

// Union is an abstract type with no fields of its own.
type Union struct {
	Name  string
	Types map[string]*Object
}

func (u *Union) isType()        {}
func (u *Union) String() string { return u.Name }

// Field carries federation metadata alongside the usual name/type/args.
type Field struct {
	Name string
	Type Type
	Args map[string]Type

	// Owner is the service that resolves this field. Empty for built-in
	// meta fields (__typename etc.), which any service can answer.
	Owner string

	// Requires is a field set on the parent type that must be fetched
	// from the parent's owner and passed to Owner alongside the entity
	// key (§3 Data model, @requires directive).
	Requires []string

	// Provides is a field set on the return type that Owner can supply
	// inline when resolving this field, suppressing a subsequent hop for
	// those sub-fields (§4.2.1 point 5, @provides directive).
	Provides []string

	// External marks a field that is declared on this type (for key or
	// requires/provides bookkeeping) but not resolvable by its nominal
	// owner's peers — i.e. this exact Field value IS the declaration, and
	// External here means "this occurrence is a stub other services use
	// to reference the field, not the one that resolves it."
	External bool
}

// possibleTypes returns the concrete object types a field's abstract
// parent type can resolve to.
func possibleTypes(t Type) []*Object {
	switch t := t.(type) {
	case *Interface:
		return t.PossibleTypes
	case *Union:
		objs := make([]*Object, 0, len(t.Types))
		names := make([]string, 0, len(t.Types))
		for name := range t.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			objs = append(objs, t.Types[name])
		}
		return objs
	default:
		return nil
	}
}

func isAbstract(t Type) bool {
	switch t.(type) {
	case *Interface, *Union:
		return true
	default:
		return false
	}
}

// fieldsOf returns the field map of any composite type (object, interface,
// or union — the latter has none of its own).
func fieldsOf(t Type) map[string]*Field {
	switch t := t.(type) {
	case *Object:
		return t.Fields
	case *Interface:
		return t.Fields
	default:
		return nil
	}
}

func typeName(t Type) string {
	switch t := t.(type) {
	case *Object:
		return t.Name
	case *Interface:
		return t.Name
	case *Union:
		return t.Name
	case *Scalar:
		return t.Name
	case *Enum:
		return t.Name
	case *InputObject:
		return t.Name
	default:
		return t.String()
	}
}

// namedKeysOf returns the declared key sets of an entity type, or nil for
// types that aren't entities (unions/interfaces have no keys of their own;
// only their concrete members might).
func namedKeysOf(t Type) []KeySet {
	if obj, ok := t.(*Object); ok {
		return obj.Keys
	}
	return nil
}

// Schema is the composed supergraph: a GraphQL schema with federation
// metadata attached to every field and entity type (spec §3, Composed
// schema).
type Schema struct {
	Query        *Object
	Mutation     *Object
	Subscription *Object

	// Types indexes every named type reachable from the root operations,
	// used to resolve type conditions encountered while splitting.
	Types map[string]Type
}

// RootFor returns the root object type for an operation kind ("query",
// "mutation", or "subscription").
func (s *Schema) RootFor(kind string) (*Object, error) {
	switch kind {
	case "query":
		if s.Query == nil {
			return nil, oops.Errorf("schema has no Query root")
		}
		return s.Query, nil
	case "mutation":
		if s.Mutation == nil {
			return nil, oops.Errorf("schema has no Mutation root")
		}
		return s.Mutation, nil
	case "subscription":
		if s.Subscription == nil {
			return nil, oops.Errorf("schema has no Subscription root")
		}
		return s.Subscription, nil
	default:
		return nil, oops.Errorf("unknown operation kind %q", kind)
	}
}

// LookupType resolves a type condition name (from an inline fragment or
// fragment spread) against the schema.
func (s *Schema) LookupType(name string) (Type, error) {
	t, ok := s.Types[name]
	if !ok {
		return nil, oops.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Validate performs the SCHEMA_VALIDATION checks spec §7 requires: every
// non-built-in field on every object/interface type declares an owner, and
// every @requires field set resolves to real fields on the parent type.
func (s *Schema) Validate() error {
	var errs []error
	seen := make(map[Type]bool)

	var visit func(t Type)
	visit = func(t Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true

		fields := fieldsOf(t)
		for name, f := range fields {
			if f.Owner == "" && !isMeta(name) {
				errs = append(errs, oops.Errorf("field %s.%s has no owner service", typeName(t), name))
			}
			for _, req := range f.Requires {
				if _, ok := fields[req]; !ok {
					errs = append(errs, oops.Errorf("field %s.%s requires unresolvable field %q", typeName(t), name, req))
				}
			}
			visit(underlyingNamed(f.Type))
		}

		for _, obj := range possibleTypes(t) {
			visit(obj)
		}
	}

	if s.Query != nil {
		visit(s.Query)
	}
	if s.Mutation != nil {
		visit(s.Mutation)
	}
	if s.Subscription != nil {
		visit(s.Subscription)
	}

	if len(errs) == 0 {
		return nil
	}
	return &PlanError{Kind: SchemaValidation, Causes: errs}
}

// underlyingNamed strips List/NonNull wrappers to get at the named type
// that carries fields or possible-types metadata.
func underlyingNamed(t Type) Type {
	for {
		switch inner := t.(type) {
		case *NonNull:
			t = inner.Type
		case *List:
			t = inner.Type
		default:
			return t
		}
	}
}

func isMeta(name string) bool {
	switch name {
	case "__typename", "__schema", "__type":
		return true
	default:
		return false
	}
}
