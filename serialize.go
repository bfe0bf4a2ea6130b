package queryplanner

import (
	"fmt"
	"sort"
	"strings"
)

// Serialize renders a plan in the stable textual form spec §4.5 defines,
// used by tests and debug tooling to compare plans without caring about
// internal group bookkeeping.
func Serialize(plan *QueryPlan) string {
	var b strings.Builder
	b.WriteString("QueryPlan { ")
	writeNode(&b, plan.Node)
	b.WriteString(" }")
	return b.String()
}

func writeNode(b *strings.Builder, n PlanNode) {
	switch t := n.(type) {
	case nil:
		return
	case *Fetch:
		writeFetch(b, t)
	case *Flatten:
		fmt.Fprintf(b, "Flatten(path: %q) { ", strings.Join(t.Path, "."))
		writeNode(b, t.Node)
		b.WriteString(" }")
	case *Sequence:
		b.WriteString("Sequence { ")
		writeNodeList(b, t.Nodes)
		b.WriteString(" }")
	case *Parallel:
		b.WriteString("Parallel { ")
		writeNodeList(b, t.Nodes)
		b.WriteString(" }")
	}
}

func writeNodeList(b *strings.Builder, nodes []PlanNode) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		writeNode(b, n)
	}
}

func writeFetch(b *strings.Builder, f *Fetch) {
	fmt.Fprintf(b, "Fetch(service: %q) { ", f.Service)

	if f.Requires != nil && len(f.Requires.Selections) > 0 {
		fmt.Fprintf(b, "representations: %s%s => ", f.ParentType, writeSelectionSet(f.Requires))
	}

	b.WriteString(writeTopLevelSelections(f.Selections))

	for _, frag := range f.InternalFragments {
		fmt.Fprintf(b, " fragment %s on %s %s", frag.Name, frag.TypeCondition, writeSelectionSet(frag.SelectionSet))
	}

	b.WriteString(" }")
}

// writeTopLevelSelections renders a Fetch's root selections without an
// enclosing `{ }` pair — the Fetch's own braces already provide that.
func writeTopLevelSelections(ss *SelectionSet) string {
	ordered := canonicalOrder(ss)
	parts := make([]string, len(ordered))
	for i, s := range ordered {
		parts[i] = writeSelection(s)
	}
	return strings.Join(parts, " ")
}

func writeSelectionSet(ss *SelectionSet) string {
	return "{ " + writeTopLevelSelections(ss) + " }"
}

func writeSelection(s *Selection) string {
	if s.isFragment() {
		if s.FragmentRef != "" {
			return "..." + s.FragmentRef
		}
		return fmt.Sprintf("...on %s %s", s.TypeCondition, writeSelectionSet(s.SelectionSet))
	}

	var b strings.Builder
	if s.Alias != "" && s.Alias != s.Name {
		b.WriteString(s.Alias)
		b.WriteByte(':')
	}
	b.WriteString(s.Name)
	b.WriteString(writeArguments(s.Arguments))
	if s.SelectionSet != nil {
		b.WriteByte(' ')
		b.WriteString(writeSelectionSet(s.SelectionSet))
	}
	return b.String()
}

func writeArguments(args map[string]Value) string {
	if len(args) == 0 {
		return ""
	}
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + writeValue(args[name])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func writeValue(v Value) string {
	if v.Variable != "" {
		return "$" + v.Variable
	}
	return fmt.Sprintf("%v", v.Literal)
}

// canonicalOrder implements spec §4.5's selection ordering rule:
// __typename first, then fields in insertion order, inline fragments last.
func canonicalOrder(ss *SelectionSet) []*Selection {
	if ss == nil {
		return nil
	}
	var typename *Selection
	var fields []*Selection
	var fragments []*Selection
	for _, s := range ss.Selections {
		switch {
		case !s.isFragment() && s.Name == "__typename" && typename == nil:
			typename = s
		case s.isFragment():
			fragments = append(fragments, s)
		default:
			fields = append(fields, s)
		}
	}
	out := make([]*Selection, 0, len(ss.Selections))
	if typename != nil {
		out = append(out, typename)
	}
	out = append(out, fields...)
	out = append(out, fragments...)
	return out
}
