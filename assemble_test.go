package queryplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroup(arena *groupArena, service, parentType string, path []string) groupID {
	g, _ := arena.getOrCreateDependent(service, parentType, path)
	return g.id
}

func TestAssemble_SingleRootCollapsesToBareFetch(t *testing.T) {
	arena := newGroupArena()
	root, _ := arena.getOrCreateRoot("accounts", "Query")
	asm := &assembler{arena: arena}

	plan := asm.assemble("query")
	_, ok := plan.Node.(*Fetch)
	require.True(t, ok, "a single root with no dependents must collapse to a bare Fetch, got %T", plan.Node)
	assert.Equal(t, "accounts", root.service)
}

func TestAssemble_LinearChainFlattensIntoOneSequence(t *testing.T) {
	arena := newGroupArena()
	root, _ := arena.getOrCreateRoot("product", "Query")
	hop1 := newGroup(arena, "books", "Book", []string{"topProducts", "@"})
	hop2 := newGroup(arena, "product", "Book", []string{"topProducts", "@"})
	addDependent(root, hop1)
	addDependent(arena.get(hop1), hop2)

	asm := &assembler{arena: arena}
	plan := asm.assemble("query")

	seq, ok := plan.Node.(*Sequence)
	require.True(t, ok, "expected a flat Sequence, got %T", plan.Node)
	require.Len(t, seq.Nodes, 3, "chain of 3 groups must flatten to 3 siblings, not nest")

	_, ok = seq.Nodes[0].(*Fetch)
	assert.True(t, ok)
	flatten1, ok := seq.Nodes[1].(*Flatten)
	require.True(t, ok)
	assert.Equal(t, []string{"topProducts", "@"}, flatten1.Path)
	flatten2, ok := seq.Nodes[2].(*Flatten)
	require.True(t, ok)
	assert.Equal(t, []string{"topProducts", "@"}, flatten2.Path)
}

func TestAssemble_BranchPointIntroducesParallel(t *testing.T) {
	arena := newGroupArena()
	root, _ := arena.getOrCreateRoot("product", "Query")
	branchA := newGroup(arena, "books", "Book", []string{"topProducts", "@"})
	branchB := newGroup(arena, "reviews", "Furniture", []string{"topProducts", "@"})
	addDependent(root, branchA)
	addDependent(root, branchB)

	asm := &assembler{arena: arena}
	plan := asm.assemble("query")

	seq, ok := plan.Node.(*Sequence)
	require.True(t, ok, "root Fetch then a branch must still be a Sequence, got %T", plan.Node)
	require.Len(t, seq.Nodes, 2)
	_, ok = seq.Nodes[0].(*Fetch)
	assert.True(t, ok)

	par, ok := seq.Nodes[1].(*Parallel)
	require.True(t, ok, "two dependents of the same group must assemble under Parallel, got %T", seq.Nodes[1])
	assert.Len(t, par.Nodes, 2)
}

func TestAssemble_MultipleRootsUseParallelForQueryButSequenceForMutation(t *testing.T) {
	arena := newGroupArena()
	arena.getOrCreateRoot("accounts", "Query")
	arena.getOrCreateRoot("product", "Query")
	asm := &assembler{arena: arena}

	queryPlan := asm.assemble("query")
	_, ok := queryPlan.Node.(*Parallel)
	assert.True(t, ok, "independent query roots run in Parallel, got %T", queryPlan.Node)

	arena2 := newGroupArena()
	arena2.getOrCreateRoot("accounts", "Mutation")
	arena2.getOrCreateRoot("reviews", "Mutation")
	asm2 := &assembler{arena: arena2}
	mutationPlan := asm2.assemble("mutation")
	_, ok = mutationPlan.Node.(*Sequence)
	assert.True(t, ok, "mutation roots must preserve order via Sequence, got %T", mutationPlan.Node)
}

func TestCollapseParallel_ElidesEmptyAndSingleChild(t *testing.T) {
	assert.Nil(t, collapseParallel(nil))

	f := &Fetch{Service: "accounts"}
	assert.Same(t, PlanNode(f), collapseParallel([]PlanNode{f}))

	f2 := &Fetch{Service: "product"}
	p := collapseParallel([]PlanNode{f, f2})
	par, ok := p.(*Parallel)
	require.True(t, ok)
	assert.Len(t, par.Nodes, 2)
}

func TestCollapseSequence_ElidesEmptyAndSingleChild(t *testing.T) {
	assert.Nil(t, collapseSequence(nil))

	f := &Fetch{Service: "accounts"}
	assert.Same(t, PlanNode(f), collapseSequence([]PlanNode{f}))
}
