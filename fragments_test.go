package queryplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookFragment(fields ...string) *Selection {
	ss := newSelectionSet()
	for _, f := range fields {
		ss.append(&Selection{Name: f, Alias: f})
	}
	return &Selection{TypeCondition: "Book", SelectionSet: ss}
}

func TestFactorizeFetch_HoistsMultiLeafFragment(t *testing.T) {
	top := newSelectionSet()
	top.append(&Selection{Name: "__typename", Alias: "__typename"})
	frag := bookFragment("__typename", "isbn")
	top.append(frag)

	fetch := &Fetch{Service: "product", Selections: top}
	(&fragmentFactorizer{}).factorizeFetch(fetch)

	require.Len(t, fetch.InternalFragments, 1)
	assert.Equal(t, "__QueryPlanFragment_0__", fetch.InternalFragments[0].Name)
	assert.Equal(t, "Book", fetch.InternalFragments[0].TypeCondition)
	assert.Equal(t, "__QueryPlanFragment_0__", frag.FragmentRef)
}

func TestFactorizeFetch_LeavesSingleLeafFragmentInline(t *testing.T) {
	top := newSelectionSet()
	frag := bookFragment("isbn")
	top.append(frag)

	fetch := &Fetch{Service: "product", Selections: top}
	(&fragmentFactorizer{}).factorizeFetch(fetch)

	assert.Empty(t, fetch.InternalFragments)
	assert.Empty(t, frag.FragmentRef)
}

func TestFactorizeFetch_HoistsRecurringSingleLeafFragment(t *testing.T) {
	top := newSelectionSet()
	fragA := bookFragment("isbn")
	fragB := bookFragment("isbn")
	top.append(fragA)
	top.append(fragB)

	fetch := &Fetch{Service: "product", Selections: top}
	(&fragmentFactorizer{}).factorizeFetch(fetch)

	require.Len(t, fetch.InternalFragments, 1)
	assert.Equal(t, fragA.FragmentRef, fragB.FragmentRef)
	assert.NotEmpty(t, fragA.FragmentRef)
}

func TestFragmentFactorizer_CounterIsMonotonicAcrossFetches(t *testing.T) {
	f := &fragmentFactorizer{}

	fetch1 := &Fetch{Service: "product", Selections: newSelectionSet()}
	fetch1.Selections.append(bookFragment("isbn", "title"))
	f.factorizeFetch(fetch1)

	fetch2 := &Fetch{Service: "product", Selections: newSelectionSet()}
	fetch2.Selections.append(bookFragment("isbn", "year"))
	f.factorizeFetch(fetch2)

	assert.Equal(t, "__QueryPlanFragment_0__", fetch1.InternalFragments[0].Name)
	assert.Equal(t, "__QueryPlanFragment_1__", fetch2.InternalFragments[0].Name)
}

func TestLeafCount_CountsAcrossFragmentsAndNesting(t *testing.T) {
	inner := newSelectionSet()
	inner.append(&Selection{Name: "body", Alias: "body"})
	inner.append(&Selection{Name: "author", Alias: "author", SelectionSet: newSelectionSet()})

	assert.Equal(t, 1, leafCount(inner))

	outer := newSelectionSet()
	outer.append(bookFragment("isbn", "title"))
	assert.Equal(t, 2, leafCount(outer))
}
