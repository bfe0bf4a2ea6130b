package queryplanner

import "sort"

// collectVariableUsages walks a selection set depth-first and returns every
// variable name referenced by a field argument or directive argument, each
// name appearing once in first-use order (spec §4.2, "Variable usages...
// collected and re-emitted on its Fetch node"). Arguments is a map, so each
// selection's own argument names are sorted before being added — otherwise
// two variable-valued arguments on one selection would add in random map
// iteration order, breaking the determinism this function promises.
func collectVariableUsages(ss *SelectionSet) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	addSorted := func(args map[string]Value) {
		names := make([]string, 0, len(args))
		for name := range args {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			add(args[name].Variable)
		}
	}

	var walk func(ss *SelectionSet)
	walk = func(ss *SelectionSet) {
		if ss == nil {
			return
		}
		for _, sel := range ss.Selections {
			addSorted(sel.Arguments)
			for _, d := range sel.Directives {
				addSorted(d.Arguments)
			}
			walk(sel.SelectionSet)
		}
	}
	walk(ss)
	return out
}

// populateVariableUsages fills in VariableUsages on every Fetch in the
// assembled plan.
func populateVariableUsages(n PlanNode) {
	switch t := n.(type) {
	case nil:
	case *Fetch:
		t.VariableUsages = collectVariableUsages(t.Selections)
	case *Flatten:
		populateVariableUsages(t.Node)
	case *Sequence:
		for _, c := range t.Nodes {
			populateVariableUsages(c)
		}
	case *Parallel:
		for _, c := range t.Nodes {
			populateVariableUsages(c)
		}
	}
}
