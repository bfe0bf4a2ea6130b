package queryplanner

// Value is either a variable reference (Variable != "") or a literal.
type Value struct {
	Variable string
	Literal  interface{}
}

// Directive is a GraphQL directive attached to a selection (e.g. @skip,
// @include). Federation directives (@requires/@provides/@external) live on
// schema fields instead (see Field), not on selections.
type Directive struct {
	Name      string
	Arguments map[string]Value
}

// Selection is one entry in a SelectionSet: either a field (Name != "") or
// an inline fragment (TypeCondition != ""). By the time a SelectionSet
// reaches the splitter, named-fragment spreads have already been inlined
// into inline fragments by the Operation Context Builder (spec §4.1).
type Selection struct {
	// Name is the field's source name, or "" for an inline fragment.
	Name string
	// Alias is the response key. For fields with no explicit alias, Alias
	// equals Name. Unused for inline fragments.
	Alias string
	// Arguments holds the field's argument values, keyed by argument name.
	Arguments map[string]Value
	Directives []*Directive
	// TypeCondition is the type an inline fragment applies under; empty
	// for plain field selections.
	TypeCondition string
	SelectionSet  *SelectionSet

	// FragmentRef, once the factorizer has run, names the NamedFragment
	// whose body replaces SelectionSet for serialization (spec §4.4). Only
	// ever set on a fragment selection (isFragment() == true).
	FragmentRef string
}

func (s *Selection) isFragment() bool { return s.Name == "" && s.TypeCondition != "" }

// SelectionSet is an ordered sequence of selections (spec §3).
type SelectionSet struct {
	Selections []*Selection
}

func newSelectionSet() *SelectionSet { return &SelectionSet{} }

// clone makes a shallow copy of the selection set's slice so callers can
// append without mutating a shared backing array.
func (ss *SelectionSet) clone() *SelectionSet {
	if ss == nil {
		return nil
	}
	out := &SelectionSet{Selections: make([]*Selection, len(ss.Selections))}
	copy(out.Selections, ss.Selections)
	return out
}

func (ss *SelectionSet) findField(alias string) *Selection {
	if ss == nil {
		return nil
	}
	for _, s := range ss.Selections {
		if !s.isFragment() && s.Alias == alias {
			return s
		}
	}
	return nil
}

func (ss *SelectionSet) append(s *Selection) {
	ss.Selections = append(ss.Selections, s)
}

// PlanNode is implemented by Fetch, Flatten, Sequence, and Parallel (spec
// §3, Plan node tagged variants).
type PlanNode interface {
	isPlanNode()
}

// NamedFragment is a fragment hoisted by the factorizer (spec §4.4),
// `__QueryPlanFragment_<n>__`.
type NamedFragment struct {
	Name          string
	TypeCondition string
	SelectionSet  *SelectionSet
}

// Fetch is a single downstream request to one service.
type Fetch struct {
	Service           string
	VariableUsages    []string
	Requires          *SelectionSet // nil for a root group
	Selections        *SelectionSet
	InternalFragments []*NamedFragment
	// ParentType records the type the representation (if any) is fetched
	// against; the serializer prints it before the representation.
	ParentType string
}

func (f *Fetch) isPlanNode() {}

// Flatten wraps a child whose output attaches at a nested response path.
// Path segments use "@" to mark array fan-out (spec §4.2.4).
type Flatten struct {
	Path []string
	Node PlanNode
}

func (f *Flatten) isPlanNode() {}

// Sequence executes its nodes left-to-right, each waiting on its
// predecessor.
type Sequence struct {
	Nodes []PlanNode
}

func (s *Sequence) isPlanNode() {}

// Parallel executes its nodes concurrently.
type Parallel struct {
	Nodes []PlanNode
}

func (p *Parallel) isPlanNode() {}

// QueryPlan is the planner's output (spec §6).
type QueryPlan struct {
	Node PlanNode
}
