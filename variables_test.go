package queryplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectVariableUsages_SortsMultipleArgsOnOneSelection(t *testing.T) {
	ss := newSelectionSet()
	ss.append(&Selection{
		Name:  "search",
		Alias: "search",
		Arguments: map[string]Value{
			"zArg": {Variable: "zVar"},
			"aArg": {Variable: "aVar"},
			"mArg": {Variable: "mVar"},
		},
	})

	got := collectVariableUsages(ss)
	assert.Equal(t, []string{"aVar", "mVar", "zVar"}, got)
}

func TestCollectVariableUsages_DedupesAndPreservesSelectionOrder(t *testing.T) {
	ss := newSelectionSet()
	ss.append(&Selection{
		Name:      "first",
		Alias:     "first",
		Arguments: map[string]Value{"limit": {Variable: "pageSize"}},
	})
	ss.append(&Selection{
		Name:      "second",
		Alias:     "second",
		Arguments: map[string]Value{"limit": {Variable: "pageSize"}},
		SelectionSet: func() *SelectionSet {
			inner := newSelectionSet()
			inner.append(&Selection{
				Name:  "nested",
				Alias: "nested",
				Directives: []*Directive{{
					Name:      "include",
					Arguments: map[string]Value{"if": {Variable: "shouldInclude"}},
				}},
			})
			return inner
		}(),
	})

	got := collectVariableUsages(ss)
	assert.Equal(t, []string{"pageSize", "shouldInclude"}, got)
}

func TestPopulateVariableUsages_FillsEveryFetchInTree(t *testing.T) {
	fetch1 := &Fetch{Service: "accounts", Selections: newSelectionSet()}
	fetch1.Selections.append(&Selection{
		Name:      "me",
		Alias:     "me",
		Arguments: map[string]Value{"id": {Variable: "userID"}},
	})
	fetch2 := &Fetch{Service: "reviews", Selections: newSelectionSet()}
	fetch2.Selections.append(&Selection{Name: "topReviews", Alias: "topReviews"})

	plan := &Sequence{Nodes: []PlanNode{
		fetch1,
		&Flatten{Path: []string{"me"}, Node: fetch2},
	}}
	populateVariableUsages(plan)

	assert.Equal(t, []string{"userID"}, fetch1.VariableUsages)
	assert.Empty(t, fetch2.VariableUsages)
}
