package queryplanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// TestPlan_S1_StructuralComparison asserts the assembled plan tree against a
// hand-built expectation field-by-field, rather than against its serialized
// string, so a change that alters structure without changing Serialize's
// output (e.g. an extra empty Requires set) still fails the test.
func TestPlan_S1_StructuralComparison(t *testing.T) {
	plan := mustPlan(t, `{ me { name } }`)

	want := &QueryPlan{Node: &Fetch{
		Service:    "accounts",
		ParentType: "Query",
		Selections: selSet(&Selection{Name: "me", Alias: "me", SelectionSet: selSet(field("name"))}),
	}}

	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan tree mismatch (-want +got):\n%s", diff)
	}
}

// TestPlan_S3_StructuralComparison covers the dependent-hop shape (a
// Sequence wrapping a Flatten) the same way.
func TestPlan_S3_StructuralComparison(t *testing.T) {
	plan := mustPlan(t, `{ me { reviews { body } numberOfReviews } }`)

	want := &QueryPlan{Node: &Sequence{Nodes: []PlanNode{
		&Fetch{
			Service:    "accounts",
			ParentType: "Query",
			Selections: selSet(&Selection{
				Name:  "me",
				Alias: "me",
				SelectionSet: selSet(
					field("__typename"),
					field("id"),
				),
			}),
		},
		&Flatten{
			Path: []string{"me"},
			Node: &Fetch{
				Service:    "reviews",
				ParentType: "User",
				Requires:   selSet(field("__typename"), field("id")),
				Selections: selSet(
					&Selection{Name: "reviews", Alias: "reviews", SelectionSet: selSet(field("body"))},
					field("numberOfReviews"),
				),
			},
		},
	}}}

	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan tree mismatch (-want +got):\n%s", diff)
	}
}

// TestSerialize_PrettyDiffAgainstFixture renders two separately-built plan
// trees that serialize identically and checks their pretty-printed forms
// diff to nothing, the way the teacher's union_test.go compares decoded
// results with pretty.Compare instead of reflect.DeepEqual/==.
func TestSerialize_PrettyDiffAgainstFixture(t *testing.T) {
	schema := newFederationFixture()

	doc1, err := parser.ParseQuery(&ast.Source{Input: `{ me { name } }`})
	require.NoError(t, err)
	plan1, err := Plan(schema, doc1, "")
	require.NoError(t, err)

	doc2, err := parser.ParseQuery(&ast.Source{Input: `query { me { name } }`})
	require.NoError(t, err)
	plan2, err := Plan(schema, doc2, "")
	require.NoError(t, err)

	if diff := pretty.Compare(plan1, plan2); diff != "" {
		t.Errorf("expected equivalent shorthand and explicit query operations to plan identically, got diff:\n%s", diff)
	}
}
