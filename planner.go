package queryplanner

import "github.com/vektah/gqlparser/v2/ast"

// Plan builds a query plan for one operation in doc, selected by
// operationName (pass "" when the document has exactly one operation).
// It runs the full pipeline: schema validation, operation context
// construction, selection-set splitting, plan-tree assembly, fragment
// factorization, and variable-usage population.
func Plan(schema *Schema, doc *ast.QueryDocument, operationName string) (*QueryPlan, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	raw := ConvertDocument(doc)

	opCtx, err := BuildOperationContext(schema, raw, operationName)
	if err != nil {
		return nil, err
	}

	arena := newGroupArena()
	sp := &splitter{schema: schema, arena: arena}
	if err := sp.splitRoot(opCtx.RootType, opCtx.SelectionSet); err != nil {
		return nil, err
	}

	asm := &assembler{arena: arena}
	plan := asm.assemble(opCtx.Kind)
	if plan.Node == nil {
		return plan, nil
	}

	(&fragmentFactorizer{}).run(plan)
	populateVariableUsages(plan.Node)

	return plan, nil
}
