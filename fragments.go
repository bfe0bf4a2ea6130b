package queryplanner

import (
	"fmt"
	"strings"
)

// fragmentFactorizer hoists repeated or non-trivial inline-fragment bodies
// into named fragments (spec §4.4). A single instance is shared across an
// entire plan so its counter stays globally monotonic.
type fragmentFactorizer struct {
	counter int
}

// run walks the assembled plan depth-first and factorizes every Fetch's
// selection set in the order Fetches appear in the tree.
func (f *fragmentFactorizer) run(plan *QueryPlan) {
	f.walkNode(plan.Node)
}

func (f *fragmentFactorizer) walkNode(n PlanNode) {
	switch t := n.(type) {
	case nil:
	case *Fetch:
		f.factorizeFetch(t)
	case *Flatten:
		f.walkNode(t.Node)
	case *Sequence:
		for _, c := range t.Nodes {
			f.walkNode(c)
		}
	case *Parallel:
		for _, c := range t.Nodes {
			f.walkNode(c)
		}
	}
}

// factorizeFetch implements spec §4.4: candidates are the selection sets
// belonging to every inline fragment reachable from the Fetch's top-level
// selections (they alone have the stable `on T` header a named fragment
// needs). A candidate is hoisted when it has more than one leaf field or
// its structural signature recurs at least twice within this Fetch.
func (f *fragmentFactorizer) factorizeFetch(fetch *Fetch) {
	candidates := collectFragmentCandidates(fetch.Selections)
	if len(candidates) == 0 {
		return
	}

	sigCount := make(map[string]int, len(candidates))
	for _, c := range candidates {
		sigCount[signature(c.SelectionSet)]++
	}

	assigned := make(map[string]string)
	for _, c := range candidates {
		sig := signature(c.SelectionSet)
		if leafCount(c.SelectionSet) <= 1 && sigCount[sig] < 2 {
			continue
		}

		name, ok := assigned[sig]
		if !ok {
			name = fmt.Sprintf("__QueryPlanFragment_%d__", f.counter)
			f.counter++
			assigned[sig] = name
			fetch.InternalFragments = append(fetch.InternalFragments, &NamedFragment{
				Name:          name,
				TypeCondition: c.TypeCondition,
				SelectionSet:  c.SelectionSet,
			})
		}
		c.FragmentRef = name
	}
}

// collectFragmentCandidates returns every inline-fragment Selection
// reachable from ss, depth-first in selection order, including fragments
// nested inside other fragments' bodies.
func collectFragmentCandidates(ss *SelectionSet) []*Selection {
	var out []*Selection
	var walk func(ss *SelectionSet)
	walk = func(ss *SelectionSet) {
		if ss == nil {
			return
		}
		for _, sel := range ss.Selections {
			if sel.isFragment() {
				out = append(out, sel)
			}
			walk(sel.SelectionSet)
		}
	}
	walk(ss)
	return out
}

// signature builds a structural fingerprint of a selection set, ignoring
// aliases-as-identity concerns that don't affect shape, for duplicate
// detection (spec §4.4 point b).
func signature(ss *SelectionSet) string {
	if ss == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range ss.Selections {
		if s.isFragment() {
			b.WriteString("...on ")
			b.WriteString(s.TypeCondition)
			b.WriteByte('{')
			b.WriteString(signature(s.SelectionSet))
			b.WriteByte('}')
			continue
		}
		b.WriteString(s.Alias)
		b.WriteByte(':')
		b.WriteString(s.Name)
		if s.SelectionSet != nil {
			b.WriteByte('{')
			b.WriteString(signature(s.SelectionSet))
			b.WriteByte('}')
		}
		b.WriteByte(';')
	}
	return b.String()
}

// leafCount counts fields with no subselection, recursively.
func leafCount(ss *SelectionSet) int {
	if ss == nil {
		return 0
	}
	n := 0
	for _, s := range ss.Selections {
		if s.isFragment() {
			n += leafCount(s.SelectionSet)
			continue
		}
		if s.SelectionSet == nil {
			n++
		} else {
			n += leafCount(s.SelectionSet)
		}
	}
	return n
}
