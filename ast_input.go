package queryplanner

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// rawSelection mirrors a parsed selection before fragment spreads are
// inlined: unlike Selection, it keeps spreads (FragmentName != "") as a
// distinct case from inline fragments.
type rawSelection struct {
	Name          string
	Alias         string
	Arguments     map[string]Value
	Directives    []*Directive
	TypeCondition string
	FragmentName  string
	SelectionSet  []*rawSelection
}

func (s *rawSelection) isFragmentSpread() bool { return s.FragmentName != "" }
func (s *rawSelection) isInlineFragment() bool { return s.Name == "" && s.FragmentName == "" && s.TypeCondition != "" }

type rawFragment struct {
	Name          string
	TypeCondition string
	SelectionSet  []*rawSelection
}

type rawOperation struct {
	Name                string
	Kind                string
	VariableDefinitions []string
	SelectionSet        []*rawSelection
}

type rawDocument struct {
	Operations []*rawOperation
	Fragments  map[string]*rawFragment
}

// ConvertDocument adapts a vektah/gqlparser query document into the
// planner's raw input form.
func ConvertDocument(doc *ast.QueryDocument) *rawDocument {
	out := &rawDocument{Fragments: make(map[string]*rawFragment, len(doc.Fragments))}

	for _, frag := range doc.Fragments {
		out.Fragments[frag.Name] = &rawFragment{
			Name:          frag.Name,
			TypeCondition: frag.TypeCondition,
			SelectionSet:  convertASTSelectionSet(frag.SelectionSet),
		}
	}

	for _, op := range doc.Operations {
		var varDefs []string
		for _, v := range op.VariableDefinitions {
			varDefs = append(varDefs, v.Variable)
		}
		out.Operations = append(out.Operations, &rawOperation{
			Name:                op.Name,
			Kind:                string(op.Operation),
			VariableDefinitions: varDefs,
			SelectionSet:        convertASTSelectionSet(op.SelectionSet),
		})
	}

	return out
}

func convertASTSelectionSet(ss ast.SelectionSet) []*rawSelection {
	out := make([]*rawSelection, 0, len(ss))
	for _, sel := range ss {
		out = append(out, convertASTSelection(sel))
	}
	return out
}

func convertASTSelection(sel ast.Selection) *rawSelection {
	switch s := sel.(type) {
	case *ast.Field:
		return &rawSelection{
			Name:         s.Name,
			Alias:        fieldResponseKey(s),
			Arguments:    convertASTArguments(s.Arguments),
			Directives:   convertASTDirectives(s.Directives),
			SelectionSet: convertASTSelectionSet(s.SelectionSet),
		}
	case *ast.InlineFragment:
		return &rawSelection{
			TypeCondition: s.TypeCondition,
			Directives:    convertASTDirectives(s.Directives),
			SelectionSet:  convertASTSelectionSet(s.SelectionSet),
		}
	case *ast.FragmentSpread:
		return &rawSelection{
			FragmentName: s.Name,
			Directives:   convertASTDirectives(s.Directives),
		}
	default:
		return &rawSelection{}
	}
}

func fieldResponseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func convertASTArguments(args ast.ArgumentList) map[string]Value {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]Value, len(args))
	for _, a := range args {
		out[a.Name] = convertASTValue(a.Value)
	}
	return out
}

func convertASTDirectives(dirs ast.DirectiveList) []*Directive {
	if len(dirs) == 0 {
		return nil
	}
	out := make([]*Directive, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, &Directive{Name: d.Name, Arguments: convertASTArguments(d.Arguments)})
	}
	return out
}

func convertASTValue(v *ast.Value) Value {
	if v == nil {
		return Value{}
	}
	if v.Kind == ast.Variable {
		return Value{Variable: v.Raw}
	}
	return Value{Literal: v.Raw}
}
