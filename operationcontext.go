package queryplanner

// OperationContext is the Operation Context Builder's output (spec §4.1):
// a single resolved operation with every fragment spread inlined.
type OperationContext struct {
	Name                string
	Kind                string
	RootType            *Object
	SelectionSet        *SelectionSet
	VariableDefinitions []string
}

// BuildOperationContext resolves operationName against doc's operations
// and inlines every fragment spread within it, following the teacher's
// flattener: a depth-first substitution pass that turns spreads into
// inline fragments carrying their definition's type condition.
func BuildOperationContext(schema *Schema, doc *rawDocument, operationName string) (*OperationContext, error) {
	op, err := resolveOperation(doc, operationName)
	if err != nil {
		return nil, err
	}

	root, rootErr := schema.RootFor(op.Kind)
	if rootErr != nil {
		return nil, wrapError(OperationValidation, rootErr, "resolving root type for operation %q", op.Name)
	}

	ss, err := inlineSelections(doc, op.SelectionSet, nil)
	if err != nil {
		return nil, err
	}

	return &OperationContext{
		Name:                op.Name,
		Kind:                op.Kind,
		RootType:            root,
		SelectionSet:        ss,
		VariableDefinitions: op.VariableDefinitions,
	}, nil
}

func resolveOperation(doc *rawDocument, operationName string) (*rawOperation, error) {
	if operationName != "" {
		var matches []*rawOperation
		for _, op := range doc.Operations {
			if op.Name == operationName {
				matches = append(matches, op)
			}
		}
		switch len(matches) {
		case 0:
			return nil, newError(NoMatchingOperation, "no operation named %q", operationName)
		case 1:
			return matches[0], nil
		default:
			return nil, newError(AmbiguousOperation, "multiple operations named %q", operationName)
		}
	}

	switch len(doc.Operations) {
	case 0:
		return nil, newError(NoMatchingOperation, "document contains no operations")
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, newError(AmbiguousOperation, "document contains %d operations and no operation name was given", len(doc.Operations))
	}
}

// inlineSelections converts raw selections into the planner's Selection
// form, substituting every fragment spread with an inline fragment over
// its definition's type condition and body. visiting tracks the fragment
// names on the current expansion path to reject cycles.
func inlineSelections(doc *rawDocument, raw []*rawSelection, visiting map[string]bool) (*SelectionSet, error) {
	out := newSelectionSet()

	for _, sel := range raw {
		switch {
		case sel.isFragmentSpread():
			if visiting[sel.FragmentName] {
				return nil, newError(OperationValidation, "fragment %q is defined in terms of itself", sel.FragmentName)
			}
			frag, ok := doc.Fragments[sel.FragmentName]
			if !ok {
				return nil, newError(OperationValidation, "undefined fragment %q", sel.FragmentName)
			}

			nextVisiting := make(map[string]bool, len(visiting)+1)
			for k := range visiting {
				nextVisiting[k] = true
			}
			nextVisiting[sel.FragmentName] = true

			body, err := inlineSelections(doc, frag.SelectionSet, nextVisiting)
			if err != nil {
				return nil, err
			}
			out.append(&Selection{
				TypeCondition: frag.TypeCondition,
				Directives:    sel.Directives,
				SelectionSet:  body,
			})

		case sel.isInlineFragment():
			body, err := inlineSelections(doc, sel.SelectionSet, visiting)
			if err != nil {
				return nil, err
			}
			out.append(&Selection{
				TypeCondition: sel.TypeCondition,
				Directives:    sel.Directives,
				SelectionSet:  body,
			})

		default:
			var body *SelectionSet
			if len(sel.SelectionSet) > 0 {
				var err error
				body, err = inlineSelections(doc, sel.SelectionSet, visiting)
				if err != nil {
					return nil, err
				}
			}
			out.append(&Selection{
				Name:         sel.Name,
				Alias:        sel.Alias,
				Arguments:    sel.Arguments,
				Directives:   sel.Directives,
				SelectionSet: body,
			})
		}
	}

	return out, nil
}
