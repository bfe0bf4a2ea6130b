package queryplanner

import (
	"sort"
)

// splitter partitions an operation's selection set across services,
// producing a DAG of fetchGroups (spec §4.2). It is the hard part of the
// planner: field classification, entity-key selection, group merging, and
// abstract-type expansion all live here.
type splitter struct {
	schema *Schema
	arena  *groupArena
}

// splitRoot classifies an operation's top-level selections directly,
// since the root type itself has no owning service: each top-level field
// is bucketed by its own owner and becomes (or joins) a root fetchGroup,
// in first-occurrence order (spec §4.3 Mutation ordering relies on that
// order being preserved).
func (s *splitter) splitRoot(rootType *Object, ss *SelectionSet) error {
	byService := make(map[string][]*Selection)
	var order []string
	seen := make(map[string]bool)

	for _, sel := range ss.Selections {
		if sel.isFragment() {
			return newError(OperationValidation, "fragments are not supported directly on the %s root", rootType.Name)
		}
		field, ok := rootType.Fields[sel.Name]
		if !ok {
			return newError(OperationValidation, "type %s has no field %s", rootType.Name, sel.Name)
		}
		owner := field.Owner
		byService[owner] = append(byService[owner], sel)
		if !seen[owner] {
			seen[owner] = true
			order = append(order, owner)
		}
	}

	for _, svc := range order {
		group, _ := s.arena.getOrCreateRoot(svc, rootType.Name)
		if err := s.splitObject(rootType, &SelectionSet{Selections: byService[svc]}, group, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// split classifies every selection of ss (resolved against parentType)
// into group (if locally resolvable) or a dependent group reached from
// group. provides, if non-nil, overrides field ownership for the names it
// contains to group.service — used while descending into a field whose
// owner declared @provides for some of its sub-fields (spec §4.2.1.5).
func (s *splitter) split(parentType Type, ss *SelectionSet, group *fetchGroup, path []string, provides map[string]bool) error {
	switch t := parentType.(type) {
	case *Object:
		return s.splitObject(t, ss, group, path, provides)
	case *Interface:
		return s.splitAbstract(t, ss, group, path, provides)
	case *Union:
		return s.splitAbstract(t, ss, group, path, provides)
	default:
		return newError(OperationValidation, "cannot select fields on non-composite type %s", parentType.String())
	}
}

func fieldOwner(f *Field, provides map[string]bool, fallback string) string {
	if provides != nil && provides[f.Name] {
		return fallback
	}
	return f.Owner
}

// requiresSatisfied reports whether every field f.Requires names is
// already part of g's own representation (g.requires) — i.e. g received
// those fields as input rather than needing to fetch them itself. A
// group with no requires (a root group, or one not yet fed by an earlier
// hop) satisfies only an empty requires list.
func requiresSatisfied(g *fetchGroup, requires []string) bool {
	for _, r := range requires {
		if g.requires == nil || g.requires.findField(r) == nil {
			return false
		}
	}
	return true
}

// splitObject implements §4.2.1's field classification loop for a concrete
// object parent type. A field is local when its owner matches the
// current group's service, it isn't @external there, and (per point 4)
// any @requires fields it names are already satisfied by this group's own
// representation — otherwise the field (and whatever of its @requires
// fields aren't otherwise local) is routed to a dependent hop, which may
// target the very same service once the required fields are in hand.
func (s *splitter) splitObject(typ *Object, ss *SelectionSet, group *fetchGroup, path []string, provides map[string]bool) error {
	extraRequiresByOwner := make(map[string][]string)

	pending := append([]*Selection(nil), ss.Selections...)
	seenNames := make(map[string]bool, len(pending))
	for _, sel := range pending {
		if !sel.isFragment() {
			seenNames[sel.Name] = true
		}
	}

	var localSelections []*Selection
	selectionsByService := make(map[string][]*Selection)

	for i := 0; i < len(pending); i++ {
		sel := pending[i]
		if sel.isFragment() {
			return newError(OperationValidation, "unexpected inline fragment on concrete type %s", typ.Name)
		}
		if isMeta(sel.Name) {
			localSelections = append(localSelections, sel)
			continue
		}

		field, ok := typ.Fields[sel.Name]
		if !ok {
			return newError(OperationValidation, "type %s has no field %s", typ.Name, sel.Name)
		}

		owner := fieldOwner(field, provides, group.service)
		isProvided := provides != nil && provides[field.Name]
		satisfied := isProvided || requiresSatisfied(group, field.Requires)

		if owner == group.service && !field.External && satisfied {
			localSelections = append(localSelections, sel)
			continue
		}

		selectionsByService[owner] = append(selectionsByService[owner], sel)
		if !isProvided && !satisfied {
			extraRequiresByOwner[owner] = append(extraRequiresByOwner[owner], field.Requires...)
			for _, req := range field.Requires {
				if !seenNames[req] {
					seenNames[req] = true
					pending = append(pending, &Selection{Name: req, Alias: req})
				}
			}
		}
	}

	// Classify local selections into the current group, recursing into
	// their subselections under the same group.
	for _, sel := range localSelections {
		field := typ.Fields[sel.Name]
		copied := &Selection{Name: sel.Name, Alias: sel.Alias, Arguments: sel.Arguments, Directives: sel.Directives}

		if !isMeta(sel.Name) && sel.SelectionSet != nil {
			childPath := extendPath(path, sel.Alias, field.Type)
			childProvides := providesSet(field.Provides)
			childSS := newSelectionSet()
			copied.SelectionSet = childSS

			// Splitting into the child recurses with the SAME group for
			// local fields; dependent groups discovered underneath get
			// attached to this same group's dependents (handled via the
			// group passed below), with childPath prefixing their path.
			if err := s.splitField(field.Type, sel.SelectionSet, group, childPath, childProvides, childSS); err != nil {
				return err
			}
		}

		group.selections.append(copied)
	}

	var otherServices []string
	for svc := range selectionsByService {
		otherServices = append(otherServices, svc)
	}
	sort.Strings(otherServices)

	for _, owner := range otherServices {
		dependent, _ := s.arena.getOrCreateDependent(owner, typ.Name, path)

		extra := extraRequiresByOwner[owner]
		selfHop := owner == group.service && len(extra) > 0

		// A self-hop's required fields are supplied by whichever other
		// bucket in this same split actually owns them (the real
		// @requires source), so it must run after THAT hop, not in
		// parallel with it as a sibling of group — chain it there
		// instead of attaching it to group directly.
		parent := group
		if selfHop {
			if p := findRequiresSource(s.arena, typ, extra, otherServices, owner, path); p != nil {
				parent = p
			}
		}
		addDependent(parent, dependent.id)

		var keyFields []string
		if !selfHop {
			key, err := chooseKey(typ, group.service, owner)
			if err != nil {
				return err
			}
			keyFields = key.Fields
		}

		representation := representationSelections(typ, keyFields, extra)
		mergeRepresentation(parent.selections, representation...)
		mergeRepresentation(dependent.requires, representation...)

		fieldSelections := selectionsByService[owner]
		if err := s.splitObject(typ, &SelectionSet{Selections: fieldSelections}, dependent, path, nil); err != nil {
			return err
		}
	}

	return nil
}

// findRequiresSource looks among the other service buckets produced by this
// same splitObject call for the one that owns a name in extra — that bucket's
// dependent group is what actually supplies the self-hop's required fields.
func findRequiresSource(arena *groupArena, typ *Object, extra []string, otherServices []string, selfOwner string, path []string) *fetchGroup {
	for _, svc := range otherServices {
		if svc == selfOwner {
			continue
		}
		for _, name := range extra {
			if field, ok := typ.Fields[name]; ok && field.Owner == svc {
				g, _ := arena.getOrCreateDependent(svc, typ.Name, path)
				return g
			}
		}
	}
	return nil
}

// splitField recurses into a single field's subselection, writing the
// classified local selections into out and attaching any dependent groups
// discovered underneath to group.
func (s *splitter) splitField(fieldType Type, ss *SelectionSet, group *fetchGroup, path []string, provides map[string]bool, out *SelectionSet) error {
	named := underlyingNamed(fieldType)

	scratch := &fetchGroup{
		id:         group.id,
		service:    group.service,
		parentType: typeName(named),
		path:       path,
		selections: out,
	}

	if err := s.split(named, ss, scratch, path, provides); err != nil {
		return err
	}
	group.dependents = append(group.dependents, scratch.dependents...)
	return nil
}

// splitAbstract implements §4.2.1.6: expand a selection set on an
// interface or union into per-concrete-member inline fragments.
func (s *splitter) splitAbstract(abstract Type, ss *SelectionSet, group *fetchGroup, path []string, provides map[string]bool) error {
	members := possibleTypes(abstract)
	if len(members) == 0 {
		return newError(OperationValidation, "abstract type %s has no possible types", typeName(abstract))
	}

	var common []*Selection
	byCondition := make(map[string][]*Selection)

	for _, sel := range ss.Selections {
		if sel.isFragment() {
			byCondition[sel.TypeCondition] = append(byCondition[sel.TypeCondition], sel.SelectionSet.Selections...)
			continue
		}
		common = append(common, sel)
	}

	group.selections.append(&Selection{Name: "__typename", Alias: "__typename"})

	for _, member := range members {
		combined := append(append([]*Selection(nil), common...), byCondition[member.Name]...)
		if len(combined) == 0 {
			continue
		}

		memberSS := newSelectionSet()
		memberGroup := &fetchGroup{
			id:         group.id,
			service:    group.service,
			parentType: member.Name,
			path:       path,
			selections: memberSS,
		}
		if err := s.splitObject(member, &SelectionSet{Selections: combined}, memberGroup, path, provides); err != nil {
			return err
		}
		group.dependents = append(group.dependents, memberGroup.dependents...)

		group.selections.append(&Selection{
			Name:          "",
			TypeCondition: member.Name,
			SelectionSet:  memberSS,
		})
	}

	return nil
}

func providesSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// extendPath appends a response-key path segment, inserting an "@"
// segment after any field whose declared type is a list (spec §4.2.4).
func extendPath(path []string, alias string, fieldType Type) []string {
	out := append(append([]string(nil), path...), alias)
	if isListType(fieldType) {
		out = append(out, "@")
	}
	return out
}

func isListType(t Type) bool {
	switch t := t.(type) {
	case *NonNull:
		return isListType(t.Type)
	case *List:
		return true
	default:
		return false
	}
}

// chooseKey picks a key set from typ's declared keys, preferring one
// declared by preferredService and otherwise the first in declaration
// order (spec §4.2.2). Key fields identify the entity rather than being
// resolved by any one service, so any parent service that can return the
// entity at all is assumed able to supply them — chooseKey only fails
// when typ declares no key whatsoever.
func chooseKey(typ *Object, parentService, preferredService string) (*KeySet, error) {
	if len(typ.Keys) == 0 {
		return nil, &PlanError{Kind: UnsatisfiableKey, Causes: []error{
			newErrf("entity %s has no declared key, but service %s needs one to reach it from %s", typ.Name, preferredService, parentService),
		}}
	}
	for _, k := range typ.Keys {
		if k.Service == preferredService {
			kk := k
			return &kk, nil
		}
	}
	kk := typ.Keys[0]
	return &kk, nil
}

// representationSelections builds the `{ __typename, <key fields>, <requires
// fields> }` shape shared by the parent's outgoing selection and the
// dependent group's requires (spec §4.2.2, §glossary Representation).
func representationSelections(typ *Object, keyFields []string, requiresFields []string) []*Selection {
	out := []*Selection{{Name: "__typename", Alias: "__typename"}}
	seen := map[string]bool{"__typename": true}
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, &Selection{Name: name, Alias: name})
	}
	for _, f := range keyFields {
		add(f)
	}
	for _, f := range requiresFields {
		add(f)
	}
	return out
}
