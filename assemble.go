package queryplanner

// assembler converts a groupArena's dependency DAG into a PlanNode tree
// (spec §4.3).
type assembler struct {
	arena *groupArena
}

// assemble builds the final QueryPlan. kind is the operation kind
// ("query", "mutation", "subscription"); mutation roots are always
// combined with Sequence in declaration order (spec §4.3, Mutation
// ordering), query/subscription roots are combined with Parallel.
func (a *assembler) assemble(kind string) *QueryPlan {
	nodes := make([]PlanNode, 0, len(a.arena.roots))
	for _, id := range a.arena.roots {
		nodes = append(nodes, collapseSequence(a.buildChain(a.arena.get(id))))
	}

	var top PlanNode
	if kind == "mutation" {
		top = collapseSequence(nodes)
	} else {
		top = collapseParallel(nodes)
	}

	return &QueryPlan{Node: top}
}

// buildChain converts one fetchGroup, and everything reachable through a
// linear run of single-dependent hops, into a FLAT slice of sibling
// PlanNodes (spec §4.3 bullets 1-2, and the worked example in spec §8 S2,
// which assembles a chain of dependent hops into one flat Sequence rather
// than nesting a Sequence inside each Flatten). Only a genuine branch —
// a group with more than one dependent — introduces a Parallel, and only
// around that branch point; each branch's own chain still flattens the
// same way internally.
func (a *assembler) buildChain(g *fetchGroup) []PlanNode {
	var self PlanNode = fetchNodeFor(g)
	if len(g.path) > 0 {
		self = &Flatten{Path: append([]string(nil), g.path...), Node: self}
	}
	nodes := []PlanNode{self}

	switch len(g.dependents) {
	case 0:
		// leaf
	case 1:
		nodes = append(nodes, a.buildChain(a.arena.get(g.dependents[0]))...)
	default:
		branches := make([]PlanNode, 0, len(g.dependents))
		for _, id := range g.dependents {
			branches = append(branches, collapseSequence(a.buildChain(a.arena.get(id))))
		}
		nodes = append(nodes, collapseParallel(branches))
	}

	return nodes
}

func fetchNodeFor(g *fetchGroup) *Fetch {
	return &Fetch{
		Service:           g.service,
		Requires:          g.requires,
		Selections:        g.selections,
		InternalFragments: g.internalFragments,
		ParentType:        g.parentType,
	}
}

// collapseParallel implements spec §4.3 bullets 3 and 5: elide empties,
// collapse a single child, otherwise wrap in Parallel.
func collapseParallel(nodes []PlanNode) PlanNode {
	nodes = dropNil(nodes)
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return &Parallel{Nodes: nodes}
	}
}

// collapseSequence implements spec §4.3 bullets 4 and 5 for Sequence.
func collapseSequence(nodes []PlanNode) PlanNode {
	nodes = dropNil(nodes)
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return &Sequence{Nodes: nodes}
	}
}

func dropNil(nodes []PlanNode) []PlanNode {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
