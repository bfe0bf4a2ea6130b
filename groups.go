package queryplanner

import "strings"

// groupID addresses a fetchGroup within a groupArena. Using small integer
// ids instead of direct pointers-with-back-edges keeps the dependency
// graph free of self-referential ownership and makes the merge step (by
// service/parentType/path) a hash-table lookup, per spec §9 Design Notes.
type groupID int

// fetchGroup is the planner's central intermediate value (spec §3, Fetch
// group).
type fetchGroup struct {
	id     groupID
	isRoot bool

	service    string
	parentType string
	path       []string

	selections *SelectionSet
	// requires is the representation (entity key fields + any @requires
	// fields) this group needs from its parent; nil for a root group.
	requires *SelectionSet

	internalFragments []*NamedFragment

	// dependents lists groups that need this group's result before they
	// can run (spec §3, Fetch group: dependent groups).
	dependents []groupID
}

func mergeKey(service, parentType string, path []string) string {
	var b strings.Builder
	b.WriteString(service)
	b.WriteByte('\x00')
	b.WriteString(parentType)
	b.WriteByte('\x00')
	b.WriteString(strings.Join(path, "."))
	return b.String()
}

// groupArena owns every fetchGroup created during a single planner
// invocation.
type groupArena struct {
	groups []*fetchGroup
	byKey  map[string]groupID
	// roots lists the ids of groups created with no parent (the top-level
	// groups of the operation).
	roots []groupID
}

func newGroupArena() *groupArena {
	return &groupArena{byKey: make(map[string]groupID)}
}

func (a *groupArena) get(id groupID) *fetchGroup { return a.groups[id] }

// getOrCreateRoot finds or creates a root group for service, merging
// top-level fields bound for the same service into one group (spec §8
// S6: multiple same-service mutation fields still produce a single
// Fetch). First-creation order is preserved in a.roots, which is what
// lets mutation assembly honor source order.
func (a *groupArena) getOrCreateRoot(service, parentType string) (*fetchGroup, bool) {
	key := mergeKey(service, parentType, nil)
	if id, ok := a.byKey[key]; ok {
		return a.groups[id], false
	}
	g := &fetchGroup{
		id:         groupID(len(a.groups)),
		isRoot:     true,
		service:    service,
		parentType: parentType,
		selections: newSelectionSet(),
	}
	a.groups = append(a.groups, g)
	a.byKey[key] = g.id
	a.roots = append(a.roots, g.id)
	return g, true
}

// getOrCreateDependent finds or creates a dependent group keyed by
// (service, parentType, path), merging into an existing one if present
// (spec §4.2.3, Group merging). Returns the group and whether it was newly
// created.
func (a *groupArena) getOrCreateDependent(service, parentType string, path []string) (*fetchGroup, bool) {
	key := mergeKey(service, parentType, path)
	if id, ok := a.byKey[key]; ok {
		return a.groups[id], false
	}
	g := &fetchGroup{
		id:         groupID(len(a.groups)),
		service:    service,
		parentType: parentType,
		path:       append([]string(nil), path...),
		selections: newSelectionSet(),
		requires:   newSelectionSet(),
	}
	a.groups = append(a.groups, g)
	a.byKey[key] = g.id
	return g, true
}

func addDependent(parent *fetchGroup, child groupID) {
	for _, d := range parent.dependents {
		if d == child {
			return
		}
	}
	parent.dependents = append(parent.dependents, child)
}

// mergeRepresentation unions src's selections into a representation
// SelectionSet by field name, deduplicating.
func mergeRepresentation(dst *SelectionSet, selections ...*Selection) {
	for _, s := range selections {
		if dst.findField(s.Alias) != nil {
			continue
		}
		dst.append(s)
	}
}
